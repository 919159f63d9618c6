package command

import (
	"context"

	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
)

// AdjustStockCommand represents the command to change a medicine's quantity
type AdjustStockCommand struct {
	MedicineID uint
	Delta      int
	Action     string
	ActorID    uint
	Reason     string
}

// AdjustStockHandler handles stock adjustment command
type AdjustStockHandler struct {
	ledger domain.StockLedger
}

// NewAdjustStockHandler creates a new adjust stock handler
func NewAdjustStockHandler(ledger domain.StockLedger) *AdjustStockHandler {
	return &AdjustStockHandler{ledger: ledger}
}

// Handle executes the stock adjustment. If Action is empty it is derived
// from the sign of the delta.
func (h *AdjustStockHandler) Handle(ctx context.Context, cmd AdjustStockCommand) (*domain.AdjustResult, error) {
	action := cmd.Action
	if action == "" {
		if cmd.Delta > 0 {
			action = domain.ActionStockAdd
		} else {
			action = domain.ActionStockRemove
		}
	}

	return h.ledger.Adjust(ctx, domain.Adjustment{
		MedicineID: cmd.MedicineID,
		Delta:      cmd.Delta,
		Action:     action,
		ActorID:    cmd.ActorID,
		Reason:     cmd.Reason,
	})
}
