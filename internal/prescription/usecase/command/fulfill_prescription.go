package command

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	medicinedomain "github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	"github.com/pharmacore/pharmacy-api/internal/observability/metrics"
	"github.com/pharmacore/pharmacy-api/internal/prescription/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
	"github.com/pharmacore/pharmacy-api/pkg/database"
)

// FulfillPrescriptionCommand represents the command to fulfill a
// prescription. Partial marks the prescription PARTIALLY_FULFILLED
// without touching stock; a later full fulfillment deducts everything.
type FulfillPrescriptionCommand struct {
	PrescriptionID uint
	FulfilledByID  uint
	Partial        bool
	Notes          string
}

// FulfillPrescriptionHandler handles prescription fulfillment command
type FulfillPrescriptionHandler struct {
	transactor    database.Transactor
	prescriptions domain.Repository
	ledger        StockLedger
}

// NewFulfillPrescriptionHandler creates a new fulfill prescription handler
func NewFulfillPrescriptionHandler(
	transactor database.Transactor,
	prescriptions domain.Repository,
	ledger StockLedger,
) *FulfillPrescriptionHandler {
	return &FulfillPrescriptionHandler{
		transactor:    transactor,
		prescriptions: prescriptions,
		ledger:        ledger,
	}
}

// Handle executes the fulfill prescription command. Full fulfillment runs
// entirely in one transaction: the prescription row is locked, every line
// is pre-flighted against current stock, each line is deducted through the
// ledger, line flags and the header are updated. Any failure rolls the
// whole unit back. Alerts derived by the deductions are dispatched only
// after the commit succeeded.
func (h *FulfillPrescriptionHandler) Handle(ctx context.Context, cmd FulfillPrescriptionCommand) (*domain.Prescription, error) {
	if cmd.FulfilledByID == 0 {
		return nil, apperrors.NewValidation("fulfilled_by", "actor is required")
	}

	start := time.Now()
	var prescription *domain.Prescription
	var results []*medicinedomain.AdjustResult

	err := h.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		repo := h.prescriptions.WithTx(tx)

		p, err := repo.FindByIDForUpdate(ctx, cmd.PrescriptionID)
		if err != nil {
			return err
		}

		target := domain.StatusFulfilled
		if cmd.Partial {
			target = domain.StatusPartiallyFulfilled
		}
		if !domain.CanTransition(p.Status, target) {
			return apperrors.NewInvalidState("prescription %s is %s and cannot move to %s", p.Number, p.Status, target)
		}

		now := time.Now()
		if cmd.Partial {
			// Status-only label; stock moves when the prescription is
			// fully fulfilled.
			p.Status = domain.StatusPartiallyFulfilled
			p.FulfilledByID = &cmd.FulfilledByID
			if cmd.Notes != "" {
				p.Notes = appendNote(p.Notes, "Fulfillment notes: "+cmd.Notes)
			}
			prescription = p
			return repo.Update(ctx, p)
		}

		demands := make([]medicinedomain.Demand, 0, len(p.Medicines))
		for _, line := range p.Medicines {
			demands = append(demands, medicinedomain.Demand{MedicineID: line.MedicineID, Quantity: line.Quantity})
		}
		if err := h.ledger.CheckAvailability(ctx, tx, demands); err != nil {
			return err
		}

		for i := range p.Medicines {
			line := &p.Medicines[i]
			res, err := h.ledger.AdjustTx(ctx, tx, medicinedomain.Adjustment{
				MedicineID:     line.MedicineID,
				Delta:          -line.Quantity,
				Action:         medicinedomain.ActionPrescriptionFulfill,
				ActorID:        cmd.FulfilledByID,
				Reason:         fmt.Sprintf("Fulfillment of prescription %s", p.Number),
				PrescriptionID: &p.ID,
			})
			if err != nil {
				return err
			}
			results = append(results, res)

			line.IsFulfilled = true
			if err := repo.UpdateLine(ctx, line); err != nil {
				return err
			}
		}

		p.Status = domain.StatusFulfilled
		p.FulfilledByID = &cmd.FulfilledByID
		p.DateFulfilled = &now
		if cmd.Notes != "" {
			p.Notes = appendNote(p.Notes, "Fulfillment notes: "+cmd.Notes)
		}
		prescription = p
		return repo.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		h.ledger.AfterCommit(ctx, res)
	}
	if !cmd.Partial {
		metrics.PrescriptionsFulfilled.Inc()
		metrics.FulfillmentDuration.Observe(time.Since(start).Seconds())
	}

	return prescription, nil
}

// appendNote keeps existing notes and adds the new line below them
func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
