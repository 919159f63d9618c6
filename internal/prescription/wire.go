//go:build wireinject
// +build wireinject

package prescription

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	medicinedomain "github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	"github.com/pharmacore/pharmacy-api/internal/prescription/delivery/http"
	"github.com/pharmacore/pharmacy-api/internal/prescription/domain"
	"github.com/pharmacore/pharmacy-api/internal/prescription/repository"
	"github.com/pharmacore/pharmacy-api/internal/prescription/usecase/command"
	"github.com/pharmacore/pharmacy-api/internal/prescription/usecase/query"
	"github.com/pharmacore/pharmacy-api/pkg/database"
)

// ProvidePrescriptionRepository provides the prescription repository
func ProvidePrescriptionRepository(db *gorm.DB) domain.Repository {
	return repository.NewGormPrescriptionRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvidePrescriptionRepository,
)

var UsecaseSet = wire.NewSet(
	command.NewCreatePrescriptionHandler,
	command.NewFulfillPrescriptionHandler,
	command.NewCancelPrescriptionHandler,
	command.NewReplaceLinesHandler,
	query.NewGetPrescriptionHandler,
	query.NewListPrescriptionsHandler,
	query.NewPrescriptionStatsHandler,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies.
// Ledger, deriver and dispatcher come from the caller because they span
// domains.
func InitializeHTTPHandler(
	db *gorm.DB,
	transactor database.Transactor,
	patients medicinedomain.PatientRepository,
	medicines medicinedomain.MedicineRepository,
	ledger command.StockLedger,
	deriver command.AlertDeriver,
	dispatcher command.Dispatcher,
) (*http.PrescriptionHandler, error) {
	wire.Build(
		RepositorySet,
		UsecaseSet,
		http.NewPrescriptionHandler,
	)
	return nil, nil
}
