package command

import (
	"context"
	"time"

	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// CreateMedicineCommand represents the command to create a medicine
type CreateMedicineCommand struct {
	Name           string
	Description    string
	Category       string
	Quantity       int
	Dosage         string
	ExpiryDate     time.Time
	ThresholdAlert int
	SupplierID     uint
}

// CreateMedicineHandler handles medicine creation command
type CreateMedicineHandler struct {
	medicines domain.MedicineRepository
	suppliers domain.SupplierRepository
}

// NewCreateMedicineHandler creates a new create medicine handler
func NewCreateMedicineHandler(medicines domain.MedicineRepository, suppliers domain.SupplierRepository) *CreateMedicineHandler {
	return &CreateMedicineHandler{medicines: medicines, suppliers: suppliers}
}

// Handle executes the create medicine command
func (h *CreateMedicineHandler) Handle(ctx context.Context, cmd CreateMedicineCommand) (*domain.Medicine, error) {
	if cmd.Name == "" {
		return nil, apperrors.NewValidation("name", "is required")
	}
	if !domain.ValidCategory(cmd.Category) {
		return nil, apperrors.NewValidation("category", "unknown category %q", cmd.Category)
	}
	if cmd.Quantity < 0 {
		return nil, apperrors.NewValidation("quantity", "cannot be negative")
	}
	if !cmd.ExpiryDate.After(time.Now()) {
		return nil, apperrors.NewValidation("expiry_date", "must be in the future")
	}
	if cmd.ThresholdAlert <= 0 {
		cmd.ThresholdAlert = 10
	}

	if _, err := h.suppliers.FindByID(ctx, cmd.SupplierID); err != nil {
		return nil, err
	}

	medicine := &domain.Medicine{
		Name:           cmd.Name,
		Description:    cmd.Description,
		Category:       cmd.Category,
		Quantity:       cmd.Quantity,
		Dosage:         cmd.Dosage,
		ExpiryDate:     cmd.ExpiryDate,
		ThresholdAlert: cmd.ThresholdAlert,
		SupplierID:     cmd.SupplierID,
		IsActive:       true,
	}

	if err := h.medicines.Create(ctx, medicine); err != nil {
		return nil, err
	}

	return medicine, nil
}
