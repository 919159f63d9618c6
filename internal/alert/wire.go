//go:build wireinject
// +build wireinject

package alert

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pharmacore/pharmacy-api/internal/alert/delivery/http"
	"github.com/pharmacore/pharmacy-api/internal/alert/domain"
	"github.com/pharmacore/pharmacy-api/internal/alert/repository"
	"github.com/pharmacore/pharmacy-api/internal/alert/usecase/command"
	"github.com/pharmacore/pharmacy-api/internal/alert/usecase/query"
)

// ProvideAlertRepository provides the alert repository
func ProvideAlertRepository(db *gorm.DB) domain.Repository {
	return repository.NewGormAlertRepository(db)
}

// ProvidePreferenceRepository provides the preference repository
func ProvidePreferenceRepository(db *gorm.DB) domain.PreferenceRepository {
	return repository.NewGormPreferenceRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideAlertRepository,
	ProvidePreferenceRepository,
)

var UsecaseSet = wire.NewSet(
	command.NewResolveAlertHandler,
	command.NewBulkResolveAlertsHandler,
	command.NewUpdatePreferenceHandler,
	query.NewGetAlertHandler,
	query.NewListAlertsHandler,
	query.NewAlertStatsHandler,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, cache *redis.Client) (*http.AlertHandler, error) {
	wire.Build(
		RepositorySet,
		UsecaseSet,
		http.NewAlertHandler,
	)
	return nil, nil
}
