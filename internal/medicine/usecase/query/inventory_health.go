package query

import (
	"context"

	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
)

// LowStockQuery lists medicines at or below their alert threshold
type LowStockQuery struct{}

// ExpiringQuery lists medicines expiring within the given number of days
type ExpiringQuery struct {
	Days int
}

// InventoryHealthHandler answers stock and expiry health queries
type InventoryHealthHandler struct {
	medicines domain.MedicineRepository
}

// NewInventoryHealthHandler creates a new inventory health handler
func NewInventoryHealthHandler(medicines domain.MedicineRepository) *InventoryHealthHandler {
	return &InventoryHealthHandler{medicines: medicines}
}

// LowStock returns active medicines whose quantity is at or below threshold
func (h *InventoryHealthHandler) LowStock(ctx context.Context) ([]domain.Medicine, error) {
	return h.medicines.LowStock(ctx)
}

// Expiring returns active medicines expiring within q.Days days
func (h *InventoryHealthHandler) Expiring(ctx context.Context, q ExpiringQuery) ([]domain.Medicine, error) {
	days := q.Days
	if days <= 0 {
		days = 30
	}
	return h.medicines.ExpiringWithin(ctx, days)
}
