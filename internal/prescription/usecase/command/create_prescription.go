package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	alertdomain "github.com/pharmacore/pharmacy-api/internal/alert/domain"
	medicinedomain "github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	"github.com/pharmacore/pharmacy-api/internal/prescription/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
	"github.com/pharmacore/pharmacy-api/pkg/database"
)

// LineInput is one requested medicine line
type LineInput struct {
	MedicineID uint
	Quantity   int
}

// CreatePrescriptionCommand represents the command to issue a prescription
type CreatePrescriptionCommand struct {
	PatientID      uint
	PrescribedByID uint
	IsUrgent       bool
	Diagnosis      string
	Notes          string
	DateIssued     time.Time
	Lines          []LineInput
}

// CreatePrescriptionResult carries the created prescription plus soft
// stock warnings. Warnings never block creation; the hard check happens
// at fulfillment.
type CreatePrescriptionResult struct {
	Prescription *domain.Prescription `json:"prescription"`
	Warnings     []string             `json:"warnings,omitempty"`
}

// CreatePrescriptionHandler handles prescription creation command
type CreatePrescriptionHandler struct {
	transactor    database.Transactor
	prescriptions domain.Repository
	patients      medicinedomain.PatientRepository
	medicines     medicinedomain.MedicineRepository
	deriver       AlertDeriver
	dispatcher    Dispatcher
}

// NewCreatePrescriptionHandler creates a new create prescription handler
func NewCreatePrescriptionHandler(
	transactor database.Transactor,
	prescriptions domain.Repository,
	patients medicinedomain.PatientRepository,
	medicines medicinedomain.MedicineRepository,
	deriver AlertDeriver,
	dispatcher Dispatcher,
) *CreatePrescriptionHandler {
	return &CreatePrescriptionHandler{
		transactor:    transactor,
		prescriptions: prescriptions,
		patients:      patients,
		medicines:     medicines,
		deriver:       deriver,
		dispatcher:    dispatcher,
	}
}

// Handle executes the create prescription command
func (h *CreatePrescriptionHandler) Handle(ctx context.Context, cmd CreatePrescriptionCommand) (*CreatePrescriptionResult, error) {
	if len(cmd.Lines) == 0 {
		return nil, apperrors.NewValidation("medicines", "at least one medicine is required")
	}
	seen := make(map[uint]bool, len(cmd.Lines))
	for _, line := range cmd.Lines {
		if line.Quantity < 1 {
			return nil, apperrors.NewValidation("quantity", "must be at least 1")
		}
		if seen[line.MedicineID] {
			return nil, apperrors.NewValidation("medicines", "medicine %d appears more than once", line.MedicineID)
		}
		seen[line.MedicineID] = true
	}

	patient, err := h.patients.FindByID(ctx, cmd.PatientID)
	if err != nil {
		return nil, err
	}

	// Soft stock check: flag lines the pharmacy cannot currently cover
	var warnings []string
	for _, line := range cmd.Lines {
		med, err := h.medicines.FindByID(ctx, line.MedicineID)
		if err != nil {
			return nil, err
		}
		if !med.IsActive {
			return nil, apperrors.NewValidation("medicines", "medicine %q is inactive", med.Name)
		}
		if med.Quantity < line.Quantity {
			warnings = append(warnings, fmt.Sprintf("%s: requested %d, only %d in stock", med.Name, line.Quantity, med.Quantity))
		}
	}

	issued := cmd.DateIssued
	if issued.IsZero() {
		issued = time.Now()
	}

	prescription := &domain.Prescription{
		Number:         newPrescriptionNumber(),
		PatientID:      cmd.PatientID,
		Patient:        patient,
		PrescribedByID: cmd.PrescribedByID,
		Status:         domain.StatusPending,
		IsUrgent:       cmd.IsUrgent,
		Diagnosis:      cmd.Diagnosis,
		Notes:          cmd.Notes,
		DateIssued:     issued,
	}
	for _, line := range cmd.Lines {
		prescription.Medicines = append(prescription.Medicines, domain.PrescriptionMedicine{
			MedicineID: line.MedicineID,
			Quantity:   line.Quantity,
		})
	}

	var alerts []alertdomain.AlertLog
	err = h.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		if err := h.prescriptions.WithTx(tx).Create(ctx, prescription); err != nil {
			return err
		}
		var derr error
		alerts, derr = h.deriver.PrescriptionAlerts(ctx, tx, prescription, true)
		return derr
	})
	if err != nil {
		return nil, err
	}

	h.dispatcher.DispatchAll(ctx, alerts)

	return &CreatePrescriptionResult{Prescription: prescription, Warnings: warnings}, nil
}

// newPrescriptionNumber generates an RX-xxxxxxxx reference
func newPrescriptionNumber() string {
	return "RX-" + strings.ToUpper(uuid.NewString()[:8])
}
