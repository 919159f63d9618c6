package query

import (
	"context"

	"github.com/pharmacore/pharmacy-api/internal/prescription/domain"
)

// PrescriptionStatsHandler handles the prescription statistics query
type PrescriptionStatsHandler struct {
	prescriptions domain.Repository
}

// NewPrescriptionStatsHandler creates a new prescription stats handler
func NewPrescriptionStatsHandler(prescriptions domain.Repository) *PrescriptionStatsHandler {
	return &PrescriptionStatsHandler{prescriptions: prescriptions}
}

// Handle returns prescription counts per lifecycle stage
func (h *PrescriptionStatsHandler) Handle(ctx context.Context) (*domain.Stats, error) {
	return h.prescriptions.Stats(ctx)
}
