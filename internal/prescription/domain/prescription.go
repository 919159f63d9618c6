package domain

import (
	"context"
	"time"

	"gorm.io/gorm"

	medicinedomain "github.com/pharmacore/pharmacy-api/internal/medicine/domain"
)

// Prescription statuses
const (
	StatusPending            = "PENDING"
	StatusPartiallyFulfilled = "PARTIALLY_FULFILLED"
	StatusFulfilled          = "FULFILLED"
	StatusCancelled          = "CANCELLED"
)

// CanTransition reports whether a status change is legal. Fulfillment
// only moves forward; cancellation is allowed from any status except
// CANCELLED itself, so even a fulfilled prescription can be cancelled
// for the record.
func CanTransition(from, to string) bool {
	if to == StatusCancelled {
		return from != StatusCancelled
	}
	switch from {
	case StatusPending:
		return to == StatusFulfilled || to == StatusPartiallyFulfilled
	case StatusPartiallyFulfilled:
		return to == StatusFulfilled
	default:
		return false
	}
}

// Prescription represents a doctor's prescription and its lifecycle.
// Status moves to FULFILLED or PARTIALLY_FULFILLED only through the
// fulfillment flow; CANCELLED is reachable from any other status.
type Prescription struct {
	ID             uint                    `json:"id" gorm:"primaryKey"`
	Number         string                  `json:"number" gorm:"uniqueIndex;not null"`
	PatientID      uint                    `json:"patient_id" gorm:"not null;index"`
	Patient        *medicinedomain.Patient `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	PrescribedByID uint                    `json:"prescribed_by_id" gorm:"not null;index"`
	FulfilledByID  *uint                   `json:"fulfilled_by_id,omitempty"`
	Status         string                  `json:"status" gorm:"not null;default:'PENDING';index"`
	IsUrgent       bool                    `json:"is_urgent" gorm:"not null;default:false"`
	Diagnosis      string                  `json:"diagnosis"`
	Notes          string                  `json:"notes"`
	DateIssued     time.Time               `json:"date_issued" gorm:"not null"`
	DateFulfilled  *time.Time              `json:"date_fulfilled,omitempty"`
	DateCancelled  *time.Time              `json:"date_cancelled,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`

	Medicines []PrescriptionMedicine `json:"medicines" gorm:"foreignKey:PrescriptionID"`
}

// TableName specifies the table name
func (Prescription) TableName() string {
	return "prescriptions"
}

// IsTerminal reports whether the prescription left the fulfillment
// pipeline: it can no longer be fulfilled or have its lines replaced.
// A FULFILLED prescription may still be cancelled for the record.
func (p *Prescription) IsTerminal() bool {
	return p.Status == StatusFulfilled || p.Status == StatusCancelled
}

// PrescriptionMedicine is one requested medicine line. A medicine appears
// at most once per prescription.
type PrescriptionMedicine struct {
	ID             uint                     `json:"id" gorm:"primaryKey"`
	PrescriptionID uint                     `json:"prescription_id" gorm:"not null;uniqueIndex:ux_prescription_medicine"`
	MedicineID     uint                     `json:"medicine_id" gorm:"not null;uniqueIndex:ux_prescription_medicine"`
	Medicine       *medicinedomain.Medicine `json:"medicine,omitempty" gorm:"foreignKey:MedicineID"`
	Quantity       int                      `json:"quantity" gorm:"not null;check:quantity >= 1"`
	IsFulfilled    bool                     `json:"is_fulfilled" gorm:"not null;default:false"`
}

// TableName specifies the table name
func (PrescriptionMedicine) TableName() string {
	return "prescription_medicines"
}

// Filter narrows prescription listings
type Filter struct {
	Status         string
	IsUrgent       *bool
	PatientID      uint
	PrescribedByID uint
}

// Stats aggregates prescription counts by lifecycle stage
type Stats struct {
	Total              int64 `json:"total"`
	Pending            int64 `json:"pending"`
	PartiallyFulfilled int64 `json:"partially_fulfilled"`
	Fulfilled          int64 `json:"fulfilled"`
	Cancelled          int64 `json:"cancelled"`
	UrgentPending      int64 `json:"urgent_pending"`
}

// Repository defines the contract for prescription data access
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, prescription *Prescription) error
	FindByID(ctx context.Context, id uint) (*Prescription, error)
	// FindByIDForUpdate locks the prescription row for the enclosing
	// transaction so concurrent fulfillment and cancellation serialize.
	FindByIDForUpdate(ctx context.Context, id uint) (*Prescription, error)
	FindAll(ctx context.Context, filter Filter, limit, offset int) ([]Prescription, error)
	Update(ctx context.Context, prescription *Prescription) error
	UpdateLine(ctx context.Context, line *PrescriptionMedicine) error
	// ReplaceLines deletes all existing lines and inserts the new set
	ReplaceLines(ctx context.Context, prescriptionID uint, lines []PrescriptionMedicine) error
	PendingOlderThan(ctx context.Context, age time.Duration) ([]Prescription, error)
	Stats(ctx context.Context) (*Stats, error)
}
