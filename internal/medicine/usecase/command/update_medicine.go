package command

import (
	"context"
	"time"

	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// UpdateMedicineCommand represents the command to update a medicine.
// Quantity is deliberately absent; stock moves only through the ledger.
type UpdateMedicineCommand struct {
	ID             uint
	Name           string
	Description    string
	Category       string
	Dosage         string
	ExpiryDate     *time.Time
	ThresholdAlert *int
	SupplierID     *uint
	IsActive       *bool
}

// UpdateMedicineHandler handles medicine update command
type UpdateMedicineHandler struct {
	medicines domain.MedicineRepository
	suppliers domain.SupplierRepository
}

// NewUpdateMedicineHandler creates a new update medicine handler
func NewUpdateMedicineHandler(medicines domain.MedicineRepository, suppliers domain.SupplierRepository) *UpdateMedicineHandler {
	return &UpdateMedicineHandler{medicines: medicines, suppliers: suppliers}
}

// Handle executes the update medicine command
func (h *UpdateMedicineHandler) Handle(ctx context.Context, cmd UpdateMedicineCommand) (*domain.Medicine, error) {
	medicine, err := h.medicines.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	if cmd.Name != "" {
		medicine.Name = cmd.Name
	}
	if cmd.Description != "" {
		medicine.Description = cmd.Description
	}
	if cmd.Category != "" {
		if !domain.ValidCategory(cmd.Category) {
			return nil, apperrors.NewValidation("category", "unknown category %q", cmd.Category)
		}
		medicine.Category = cmd.Category
	}
	if cmd.Dosage != "" {
		medicine.Dosage = cmd.Dosage
	}
	if cmd.ExpiryDate != nil {
		medicine.ExpiryDate = *cmd.ExpiryDate
	}
	if cmd.ThresholdAlert != nil {
		if *cmd.ThresholdAlert <= 0 {
			return nil, apperrors.NewValidation("threshold_alert", "must be positive")
		}
		medicine.ThresholdAlert = *cmd.ThresholdAlert
	}
	if cmd.SupplierID != nil {
		if _, err := h.suppliers.FindByID(ctx, *cmd.SupplierID); err != nil {
			return nil, err
		}
		medicine.SupplierID = *cmd.SupplierID
	}
	if cmd.IsActive != nil {
		medicine.IsActive = *cmd.IsActive
	}

	if err := h.medicines.Update(ctx, medicine); err != nil {
		return nil, err
	}

	return medicine, nil
}
