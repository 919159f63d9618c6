package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// GormMedicineRepository is the gorm-backed medicine store
type GormMedicineRepository struct {
	db *gorm.DB
}

// NewGormMedicineRepository creates a new medicine repository
func NewGormMedicineRepository(db *gorm.DB) *GormMedicineRepository {
	return &GormMedicineRepository{db: db}
}

// AutoMigrate migrates the medicine tables
func (r *GormMedicineRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&domain.Supplier{},
		&domain.Patient{},
		&domain.Medicine{},
		&domain.InventoryLog{},
	)
}

// Create inserts a new medicine
func (r *GormMedicineRepository) Create(ctx context.Context, medicine *domain.Medicine) error {
	return r.db.WithContext(ctx).Create(medicine).Error
}

// FindByID returns one medicine with its supplier
func (r *GormMedicineRepository) FindByID(ctx context.Context, id uint) (*domain.Medicine, error) {
	var medicine domain.Medicine
	err := r.db.WithContext(ctx).Preload("Supplier").First(&medicine, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("medicine", id)
		}
		return nil, err
	}
	return &medicine, nil
}

// FindAll lists medicines matching the filter
func (r *GormMedicineRepository) FindAll(ctx context.Context, filter domain.Filter, limit, offset int) ([]domain.Medicine, error) {
	q := r.db.WithContext(ctx).Model(&domain.Medicine{}).Preload("Supplier")
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	var medicines []domain.Medicine
	err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&medicines).Error
	return medicines, err
}

// FindActive lists every active medicine, used by the periodic alert scan
func (r *GormMedicineRepository) FindActive(ctx context.Context) ([]domain.Medicine, error) {
	var medicines []domain.Medicine
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&medicines).Error
	return medicines, err
}

// Update persists non-stock field changes. Quantity changes go through
// the stock ledger.
func (r *GormMedicineRepository) Update(ctx context.Context, medicine *domain.Medicine) error {
	return r.db.WithContext(ctx).Omit("quantity", "Supplier").Save(medicine).Error
}

// Delete soft-deletes a medicine; inventory logs keep referencing it
func (r *GormMedicineRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Medicine{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("medicine", id)
	}
	return nil
}

// LowStock lists active medicines at or below their alert threshold
func (r *GormMedicineRepository) LowStock(ctx context.Context) ([]domain.Medicine, error) {
	var medicines []domain.Medicine
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND quantity <= threshold_alert", true).
		Order("quantity ASC").
		Find(&medicines).Error
	return medicines, err
}

// ExpiringWithin lists active medicines expiring in the next N days,
// including those already expired
func (r *GormMedicineRepository) ExpiringWithin(ctx context.Context, days int) ([]domain.Medicine, error) {
	cutoff := time.Now().AddDate(0, 0, days)
	var medicines []domain.Medicine
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND expiry_date <= ?", true, cutoff).
		Order("expiry_date ASC").
		Find(&medicines).Error
	return medicines, err
}

// Logs lists the audit history for one medicine, newest first
func (r *GormMedicineRepository) Logs(ctx context.Context, medicineID uint, limit, offset int) ([]domain.InventoryLog, error) {
	var logs []domain.InventoryLog
	err := r.db.WithContext(ctx).
		Where("medicine_id = ?", medicineID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&logs).Error
	return logs, err
}
