package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pharmacore/pharmacy-api/internal/prescription/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// GormPrescriptionRepository is the gorm-backed prescription store
type GormPrescriptionRepository struct {
	db *gorm.DB
}

// NewGormPrescriptionRepository creates a new prescription repository
func NewGormPrescriptionRepository(db *gorm.DB) *GormPrescriptionRepository {
	return &GormPrescriptionRepository{db: db}
}

// AutoMigrate migrates the prescription tables
func (r *GormPrescriptionRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Prescription{}, &domain.PrescriptionMedicine{})
}

// WithTx rebinds the repository to a caller-managed transaction
func (r *GormPrescriptionRepository) WithTx(tx *gorm.DB) domain.Repository {
	return &GormPrescriptionRepository{db: tx}
}

// Create inserts a prescription together with its lines
func (r *GormPrescriptionRepository) Create(ctx context.Context, prescription *domain.Prescription) error {
	return r.db.WithContext(ctx).Create(prescription).Error
}

// FindByID returns one prescription with patient and lines preloaded
func (r *GormPrescriptionRepository) FindByID(ctx context.Context, id uint) (*domain.Prescription, error) {
	var prescription domain.Prescription
	err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Medicines").
		Preload("Medicines.Medicine").
		First(&prescription, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("prescription", id)
		}
		return nil, err
	}
	return &prescription, nil
}

// FindByIDForUpdate locks the prescription row for the enclosing
// transaction, then loads its lines.
func (r *GormPrescriptionRepository) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Prescription, error) {
	var prescription domain.Prescription
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&prescription, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("prescription", id)
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Preload("Medicine").
		Where("prescription_id = ?", id).
		Find(&prescription.Medicines).Error; err != nil {
		return nil, err
	}
	return &prescription, nil
}

// FindAll lists prescriptions matching the filter, newest first
func (r *GormPrescriptionRepository) FindAll(ctx context.Context, filter domain.Filter, limit, offset int) ([]domain.Prescription, error) {
	q := r.db.WithContext(ctx).Model(&domain.Prescription{}).
		Preload("Patient").
		Preload("Medicines").
		Preload("Medicines.Medicine")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.IsUrgent != nil {
		q = q.Where("is_urgent = ?", *filter.IsUrgent)
	}
	if filter.PatientID != 0 {
		q = q.Where("patient_id = ?", filter.PatientID)
	}
	if filter.PrescribedByID != 0 {
		q = q.Where("prescribed_by_id = ?", filter.PrescribedByID)
	}

	var prescriptions []domain.Prescription
	err := q.Order("date_issued DESC").Limit(limit).Offset(offset).Find(&prescriptions).Error
	return prescriptions, err
}

// Update persists prescription header changes; lines are managed through
// UpdateLine and ReplaceLines.
func (r *GormPrescriptionRepository) Update(ctx context.Context, prescription *domain.Prescription) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(prescription).Error
}

// UpdateLine persists one line's fulfilled flag
func (r *GormPrescriptionRepository) UpdateLine(ctx context.Context, line *domain.PrescriptionMedicine) error {
	return r.db.WithContext(ctx).Model(&domain.PrescriptionMedicine{}).
		Where("id = ?", line.ID).
		Update("is_fulfilled", line.IsFulfilled).Error
}

// ReplaceLines destructively replaces a prescription's lines in one
// transaction. No stock side effects.
func (r *GormPrescriptionRepository) ReplaceLines(ctx context.Context, prescriptionID uint, lines []domain.PrescriptionMedicine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prescription_id = ?", prescriptionID).
			Delete(&domain.PrescriptionMedicine{}).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].ID = 0
			lines[i].PrescriptionID = prescriptionID
		}
		return tx.Create(&lines).Error
	})
}

// Stats counts prescriptions per lifecycle stage plus urgent ones still
// waiting.
func (r *GormPrescriptionRepository) Stats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{}
	model := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.Prescription{})
	}

	if err := model().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	byStatus := map[string]*int64{
		domain.StatusPending:            &stats.Pending,
		domain.StatusPartiallyFulfilled: &stats.PartiallyFulfilled,
		domain.StatusFulfilled:          &stats.Fulfilled,
		domain.StatusCancelled:          &stats.Cancelled,
	}
	for status, dst := range byStatus {
		if err := model().Where("status = ?", status).Count(dst).Error; err != nil {
			return nil, err
		}
	}
	if err := model().
		Where("is_urgent = ? AND status = ?", true, domain.StatusPending).
		Count(&stats.UrgentPending).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// PendingOlderThan lists non-urgent prescriptions that have been PENDING
// longer than age, for the periodic re-evaluation job.
func (r *GormPrescriptionRepository) PendingOlderThan(ctx context.Context, age time.Duration) ([]domain.Prescription, error) {
	cutoff := time.Now().Add(-age)
	var prescriptions []domain.Prescription
	err := r.db.WithContext(ctx).
		Preload("Patient").
		Where("status = ? AND is_urgent = ? AND date_issued < ?", domain.StatusPending, false, cutoff).
		Find(&prescriptions).Error
	return prescriptions, err
}
