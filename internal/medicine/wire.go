//go:build wireinject
// +build wireinject

package medicine

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/pharmacore/pharmacy-api/internal/medicine/delivery/http"
	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	"github.com/pharmacore/pharmacy-api/internal/medicine/repository"
)

// ProvideMedicineRepository provides the traced medicine repository
func ProvideMedicineRepository(db *gorm.DB) domain.MedicineRepository {
	return repository.NewMedicineRepositoryWithTracing(repository.NewGormMedicineRepository(db))
}

// ProvideSupplierRepository provides the supplier repository
func ProvideSupplierRepository(db *gorm.DB) domain.SupplierRepository {
	return repository.NewGormSupplierRepository(db)
}

// ProvidePatientRepository provides the patient repository
func ProvidePatientRepository(db *gorm.DB) domain.PatientRepository {
	return repository.NewGormPatientRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideMedicineRepository,
	ProvideSupplierRepository,
	ProvidePatientRepository,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies.
// The stock ledger is provided by the caller since it carries the alert
// deriver and dispatcher.
func InitializeHTTPHandler(db *gorm.DB, ledger domain.StockLedger) (*http.MedicineHandler, error) {
	wire.Build(
		RepositorySet,
		http.NewMedicineHandler,
	)
	return nil, nil
}
