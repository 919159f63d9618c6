package query

import (
	"context"

	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
)

// ListMedicinesQuery represents the query to list medicines
type ListMedicinesQuery struct {
	Category   string
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ListMedicinesHandler handles list medicines query
type ListMedicinesHandler struct {
	medicines domain.MedicineRepository
}

// NewListMedicinesHandler creates a new list medicines handler
func NewListMedicinesHandler(medicines domain.MedicineRepository) *ListMedicinesHandler {
	return &ListMedicinesHandler{medicines: medicines}
}

// Handle executes the list medicines query
func (h *ListMedicinesHandler) Handle(ctx context.Context, q ListMedicinesQuery) ([]domain.Medicine, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	filter := domain.Filter{
		Category:   q.Category,
		Search:     q.Search,
		ActiveOnly: q.ActiveOnly,
	}
	return h.medicines.FindAll(ctx, filter, q.Limit, q.Offset)
}
