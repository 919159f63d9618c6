package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// GormPatientRepository is the gorm-backed patient store
type GormPatientRepository struct {
	db *gorm.DB
}

// NewGormPatientRepository creates a new patient repository
func NewGormPatientRepository(db *gorm.DB) *GormPatientRepository {
	return &GormPatientRepository{db: db}
}

// Create inserts a new patient
func (r *GormPatientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	return r.db.WithContext(ctx).Create(patient).Error
}

// FindByID returns one patient
func (r *GormPatientRepository) FindByID(ctx context.Context, id uint) (*domain.Patient, error) {
	var patient domain.Patient
	err := r.db.WithContext(ctx).First(&patient, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("patient", id)
		}
		return nil, err
	}
	return &patient, nil
}

// FindAll lists patients, optionally filtered by a name search
func (r *GormPatientRepository) FindAll(ctx context.Context, search string, limit, offset int) ([]domain.Patient, error) {
	q := r.db.WithContext(ctx).Model(&domain.Patient{})
	if search != "" {
		q = q.Where("first_name ILIKE ? OR last_name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var patients []domain.Patient
	err := q.Order("last_name ASC, first_name ASC").Limit(limit).Offset(offset).Find(&patients).Error
	return patients, err
}

// Update persists patient changes
func (r *GormPatientRepository) Update(ctx context.Context, patient *domain.Patient) error {
	return r.db.WithContext(ctx).Save(patient).Error
}

// Delete removes a patient record
func (r *GormPatientRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Patient{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("patient", id)
	}
	return nil
}
