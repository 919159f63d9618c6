package command

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pharmacore/pharmacy-api/internal/prescription/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
	"github.com/pharmacore/pharmacy-api/pkg/database"
)

// CancelPrescriptionCommand represents the command to cancel a prescription
type CancelPrescriptionCommand struct {
	PrescriptionID uint
	ActorID        uint
	Reason         string
}

// CancelPrescriptionHandler handles prescription cancellation command
type CancelPrescriptionHandler struct {
	transactor    database.Transactor
	prescriptions domain.Repository
}

// NewCancelPrescriptionHandler creates a new cancel prescription handler
func NewCancelPrescriptionHandler(transactor database.Transactor, prescriptions domain.Repository) *CancelPrescriptionHandler {
	return &CancelPrescriptionHandler{transactor: transactor, prescriptions: prescriptions}
}

// Handle executes the cancel prescription command. Any prescription can
// be cancelled except one that already is; cancellation never touches
// stock, so fulfilled quantities stay deducted.
func (h *CancelPrescriptionHandler) Handle(ctx context.Context, cmd CancelPrescriptionCommand) (*domain.Prescription, error) {
	var prescription *domain.Prescription

	err := h.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		repo := h.prescriptions.WithTx(tx)

		p, err := repo.FindByIDForUpdate(ctx, cmd.PrescriptionID)
		if err != nil {
			return err
		}

		if p.Status == domain.StatusCancelled {
			return apperrors.NewInvalidState("prescription %s is already cancelled", p.Number)
		}

		now := time.Now()
		p.Status = domain.StatusCancelled
		p.DateCancelled = &now
		if cmd.Reason != "" {
			p.Notes = appendNote(p.Notes, "Cancellation reason: "+cmd.Reason)
		}
		prescription = p
		return repo.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	return prescription, nil
}
