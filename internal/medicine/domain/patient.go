package domain

import (
	"context"
	"time"
)

// Patient genders
const (
	GenderMale    = "M"
	GenderFemale  = "F"
	GenderOther   = "O"
	GenderUnknown = "U"
)

// Patient represents a patient record
type Patient struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	FirstName        string    `json:"first_name" gorm:"not null;uniqueIndex:ux_patient_identity"`
	LastName         string    `json:"last_name" gorm:"not null;uniqueIndex:ux_patient_identity"`
	DateOfBirth      time.Time `json:"date_of_birth" gorm:"not null;uniqueIndex:ux_patient_identity"`
	Gender           string    `json:"gender" gorm:"not null;default:'U'"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	Address          string    `json:"address"`
	EmergencyContact string    `json:"emergency_contact"`
	EmergencyPhone   string    `json:"emergency_phone"`
	MedicalHistory   string    `json:"medical_history"`
	Allergies        string    `json:"allergies"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Patient) TableName() string {
	return "patients"
}

// FullName returns the patient's display name
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// PatientRepository defines the contract for patient data access
type PatientRepository interface {
	Create(ctx context.Context, patient *Patient) error
	FindByID(ctx context.Context, id uint) (*Patient, error)
	FindAll(ctx context.Context, search string, limit, offset int) ([]Patient, error)
	Update(ctx context.Context, patient *Patient) error
	Delete(ctx context.Context, id uint) error
}
