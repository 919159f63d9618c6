package command

import (
	"context"

	"gorm.io/gorm"

	"github.com/pharmacore/pharmacy-api/internal/prescription/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
	"github.com/pharmacore/pharmacy-api/pkg/database"
)

// ReplaceLinesCommand represents the command to replace all medicine lines
// of a non-terminal prescription
type ReplaceLinesCommand struct {
	PrescriptionID uint
	ActorID        uint
	Lines          []LineInput
}

// ReplaceLinesHandler handles the destructive line replacement command
type ReplaceLinesHandler struct {
	transactor    database.Transactor
	prescriptions domain.Repository
}

// NewReplaceLinesHandler creates a new replace lines handler
func NewReplaceLinesHandler(transactor database.Transactor, prescriptions domain.Repository) *ReplaceLinesHandler {
	return &ReplaceLinesHandler{transactor: transactor, prescriptions: prescriptions}
}

// Handle executes the replace lines command. No stock moves here; the new
// set is validated the same way creation validates lines.
func (h *ReplaceLinesHandler) Handle(ctx context.Context, cmd ReplaceLinesCommand) (*domain.Prescription, error) {
	if len(cmd.Lines) == 0 {
		return nil, apperrors.NewValidation("medicines", "at least one medicine is required")
	}
	seen := make(map[uint]bool, len(cmd.Lines))
	lines := make([]domain.PrescriptionMedicine, 0, len(cmd.Lines))
	for _, line := range cmd.Lines {
		if line.Quantity < 1 {
			return nil, apperrors.NewValidation("quantity", "must be at least 1")
		}
		if seen[line.MedicineID] {
			return nil, apperrors.NewValidation("medicines", "medicine %d appears more than once", line.MedicineID)
		}
		seen[line.MedicineID] = true
		lines = append(lines, domain.PrescriptionMedicine{
			PrescriptionID: cmd.PrescriptionID,
			MedicineID:     line.MedicineID,
			Quantity:       line.Quantity,
		})
	}

	var prescription *domain.Prescription
	err := h.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		repo := h.prescriptions.WithTx(tx)

		p, err := repo.FindByIDForUpdate(ctx, cmd.PrescriptionID)
		if err != nil {
			return err
		}
		if p.IsTerminal() {
			return apperrors.NewInvalidState("prescription %s is %s and its lines cannot change", p.Number, p.Status)
		}

		if err := repo.ReplaceLines(ctx, p.ID, lines); err != nil {
			return err
		}

		p.Medicines = lines
		prescription = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return prescription, nil
}
