package query

import (
	"context"

	"github.com/pharmacore/pharmacy-api/internal/prescription/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// GetPrescriptionQuery represents the query to get a prescription.
// RequesterID and RequesterRole enforce that doctors only see their own
// prescriptions.
type GetPrescriptionQuery struct {
	ID            uint
	RequesterID   uint
	RequesterRole string
}

// GetPrescriptionHandler handles get prescription query
type GetPrescriptionHandler struct {
	prescriptions domain.Repository
}

// NewGetPrescriptionHandler creates a new get prescription handler
func NewGetPrescriptionHandler(prescriptions domain.Repository) *GetPrescriptionHandler {
	return &GetPrescriptionHandler{prescriptions: prescriptions}
}

// Handle executes the get prescription query
func (h *GetPrescriptionHandler) Handle(ctx context.Context, q GetPrescriptionQuery) (*domain.Prescription, error) {
	p, err := h.prescriptions.FindByID(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	if q.RequesterRole == "DOCTOR" && p.PrescribedByID != q.RequesterID {
		// Doctors cannot see other doctors' prescriptions; hide existence
		return nil, apperrors.NewNotFound("prescription", q.ID)
	}
	return p, nil
}
