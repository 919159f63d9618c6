package domain

import (
	"context"

	"gorm.io/gorm"

	alertdomain "github.com/pharmacore/pharmacy-api/internal/alert/domain"
)

// Adjustment describes one requested quantity change
type Adjustment struct {
	MedicineID     uint
	Delta          int
	Action         string
	ActorID        uint
	Reason         string
	PrescriptionID *uint
}

// Demand is one required quantity for an availability check
type Demand struct {
	MedicineID uint
	Quantity   int
}

// AdjustResult carries the outcome of an applied adjustment. Alerts holds
// only alerts created by this adjustment; when the adjustment ran inside a
// caller-managed transaction the caller dispatches them after commit.
type AdjustResult struct {
	Medicine *Medicine
	Entry    *InventoryLog
	Alerts   []alertdomain.AlertLog
}

// StockLedger is the only write path for medicine quantities. Every
// applied change persists the new quantity and appends exactly one
// inventory log entry in the same transaction; a rejected change writes
// neither.
type StockLedger interface {
	// Adjust runs the change in its own transaction and dispatches any
	// derived alerts after commit.
	Adjust(ctx context.Context, adj Adjustment) (*AdjustResult, error)
	// AdjustTx applies the change inside tx, for composition into larger
	// atomic units such as prescription fulfillment.
	AdjustTx(ctx context.Context, tx *gorm.DB, adj Adjustment) (*AdjustResult, error)
	// CheckAvailability locks every demanded medicine row inside tx and
	// reports all shortages at once, or nil when every demand is covered.
	CheckAvailability(ctx context.Context, tx *gorm.DB, demands []Demand) error
}
