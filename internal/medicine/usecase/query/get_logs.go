package query

import (
	"context"

	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
)

// GetLogsQuery represents the query for a medicine's inventory history
type GetLogsQuery struct {
	MedicineID uint
	Limit      int
	Offset     int
}

// GetLogsHandler handles inventory log queries
type GetLogsHandler struct {
	medicines domain.MedicineRepository
}

// NewGetLogsHandler creates a new get logs handler
func NewGetLogsHandler(medicines domain.MedicineRepository) *GetLogsHandler {
	return &GetLogsHandler{medicines: medicines}
}

// Handle executes the get logs query, newest entries first
func (h *GetLogsHandler) Handle(ctx context.Context, q GetLogsQuery) ([]domain.InventoryLog, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if _, err := h.medicines.FindByID(ctx, q.MedicineID); err != nil {
		return nil, err
	}
	return h.medicines.Logs(ctx, q.MedicineID, q.Limit, q.Offset)
}
