package query

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pharmacore/pharmacy-api/internal/alert/domain"
	"github.com/pharmacore/pharmacy-api/pkg/logger"
)

const (
	statsCacheKey = "pharmacy:alert_stats"
	statsCacheTTL = 30 * time.Second
)

// AlertStatsHandler answers the alert statistics query, caching results
// briefly in redis. The cache is best-effort; a nil or unreachable redis
// client degrades to hitting the database every time.
type AlertStatsHandler struct {
	alerts domain.Repository
	cache  *redis.Client
}

// NewAlertStatsHandler creates a new alert stats handler. cache may be nil.
func NewAlertStatsHandler(alerts domain.Repository, cache *redis.Client) *AlertStatsHandler {
	return &AlertStatsHandler{alerts: alerts, cache: cache}
}

// Handle executes the alert stats query
func (h *AlertStatsHandler) Handle(ctx context.Context) (*domain.Stats, error) {
	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, statsCacheKey).Result(); err == nil {
			var stats domain.Stats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := h.alerts.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := h.cache.Set(ctx, statsCacheKey, payload, statsCacheTTL).Err(); err != nil {
				logger.Logger.Debug().Err(err).Msg("Failed to cache alert stats")
			}
		}
	}

	return stats, nil
}
