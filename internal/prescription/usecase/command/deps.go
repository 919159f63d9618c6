package command

import (
	"context"

	"gorm.io/gorm"

	alertdomain "github.com/pharmacore/pharmacy-api/internal/alert/domain"
	medicinedomain "github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	presdomain "github.com/pharmacore/pharmacy-api/internal/prescription/domain"
)

// StockLedger is the slice of the ledger the prescription commands need:
// transactional deductions plus the post-commit fan-out for each applied
// adjustment.
type StockLedger interface {
	AdjustTx(ctx context.Context, tx *gorm.DB, adj medicinedomain.Adjustment) (*medicinedomain.AdjustResult, error)
	CheckAvailability(ctx context.Context, tx *gorm.DB, demands []medicinedomain.Demand) error
	AfterCommit(ctx context.Context, res *medicinedomain.AdjustResult)
}

// AlertDeriver re-evaluates a prescription's alerts inside the mutating
// transaction.
type AlertDeriver interface {
	PrescriptionAlerts(ctx context.Context, tx *gorm.DB, p *presdomain.Prescription, justCreated bool) ([]alertdomain.AlertLog, error)
}

// Dispatcher fans out created alerts after commit
type Dispatcher interface {
	DispatchAll(ctx context.Context, alerts []alertdomain.AlertLog)
}
