package query

import (
	"context"

	"github.com/pharmacore/pharmacy-api/internal/prescription/domain"
)

// ListPrescriptionsQuery represents the query to list prescriptions
type ListPrescriptionsQuery struct {
	Status        string
	IsUrgent      *bool
	PatientID     uint
	RequesterID   uint
	RequesterRole string
	Limit         int
	Offset        int
}

// ListPrescriptionsHandler handles list prescriptions query
type ListPrescriptionsHandler struct {
	prescriptions domain.Repository
}

// NewListPrescriptionsHandler creates a new list prescriptions handler
func NewListPrescriptionsHandler(prescriptions domain.Repository) *ListPrescriptionsHandler {
	return &ListPrescriptionsHandler{prescriptions: prescriptions}
}

// Handle executes the list prescriptions query. Doctors are always scoped
// to prescriptions they issued.
func (h *ListPrescriptionsHandler) Handle(ctx context.Context, q ListPrescriptionsQuery) ([]domain.Prescription, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	filter := domain.Filter{
		Status:    q.Status,
		IsUrgent:  q.IsUrgent,
		PatientID: q.PatientID,
	}
	if q.RequesterRole == "DOCTOR" {
		filter.PrescribedByID = q.RequesterID
	}
	return h.prescriptions.FindAll(ctx, filter, q.Limit, q.Offset)
}
