package query

import (
	"context"

	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
)

// GetMedicineQuery represents the query to get a medicine
type GetMedicineQuery struct {
	ID uint
}

// GetMedicineHandler handles get medicine query
type GetMedicineHandler struct {
	medicines domain.MedicineRepository
}

// NewGetMedicineHandler creates a new get medicine handler
func NewGetMedicineHandler(medicines domain.MedicineRepository) *GetMedicineHandler {
	return &GetMedicineHandler{medicines: medicines}
}

// Handle executes the get medicine query
func (h *GetMedicineHandler) Handle(ctx context.Context, q GetMedicineQuery) (*domain.Medicine, error) {
	return h.medicines.FindByID(ctx, q.ID)
}
