package command

import (
	"context"

	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
)

// DeleteMedicineCommand represents the command to delete a medicine
type DeleteMedicineCommand struct {
	ID uint
}

// DeleteMedicineHandler handles medicine deletion command
type DeleteMedicineHandler struct {
	medicines domain.MedicineRepository
}

// NewDeleteMedicineHandler creates a new delete medicine handler
func NewDeleteMedicineHandler(medicines domain.MedicineRepository) *DeleteMedicineHandler {
	return &DeleteMedicineHandler{medicines: medicines}
}

// Handle executes the delete medicine command. The delete is soft so the
// inventory log keeps pointing at a resolvable row.
func (h *DeleteMedicineHandler) Handle(ctx context.Context, cmd DeleteMedicineCommand) error {
	return h.medicines.Delete(ctx, cmd.ID)
}
