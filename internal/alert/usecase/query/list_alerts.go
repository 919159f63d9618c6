package query

import (
	"context"
	"time"

	"github.com/pharmacore/pharmacy-api/internal/alert/domain"
)

// ListAlertsQuery represents the query to list alerts
type ListAlertsQuery struct {
	AlertType     string
	Severity      string
	Resolved      *bool
	MedicineID    uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
	Offset        int
}

// ListAlertsHandler handles alert listing queries
type ListAlertsHandler struct {
	alerts domain.Repository
}

// NewListAlertsHandler creates a new list alerts handler
func NewListAlertsHandler(alerts domain.Repository) *ListAlertsHandler {
	return &ListAlertsHandler{alerts: alerts}
}

// Handle executes the list alerts query
func (h *ListAlertsHandler) Handle(ctx context.Context, q ListAlertsQuery) ([]domain.AlertLog, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	filter := domain.Filter{
		AlertType:     q.AlertType,
		Severity:      q.Severity,
		Resolved:      q.Resolved,
		MedicineID:    q.MedicineID,
		CreatedAfter:  q.CreatedAfter,
		CreatedBefore: q.CreatedBefore,
	}
	return h.alerts.FindAll(ctx, filter, q.Limit, q.Offset)
}

// Unresolved returns all open alerts, newest first
func (h *ListAlertsHandler) Unresolved(ctx context.Context) ([]domain.AlertLog, error) {
	return h.alerts.Unresolved(ctx)
}

// Critical returns open CRITICAL alerts
func (h *ListAlertsHandler) Critical(ctx context.Context) ([]domain.AlertLog, error) {
	return h.alerts.Critical(ctx)
}
