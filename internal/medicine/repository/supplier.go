package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// GormSupplierRepository is the gorm-backed supplier store
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new supplier repository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// Create inserts a new supplier
func (r *GormSupplierRepository) Create(ctx context.Context, supplier *domain.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

// FindByID returns one supplier
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uint) (*domain.Supplier, error) {
	var supplier domain.Supplier
	err := r.db.WithContext(ctx).First(&supplier, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("supplier", id)
		}
		return nil, err
	}
	return &supplier, nil
}

// FindAll lists suppliers ordered by name
func (r *GormSupplierRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Supplier, error) {
	var suppliers []domain.Supplier
	err := r.db.WithContext(ctx).Order("name ASC").Limit(limit).Offset(offset).Find(&suppliers).Error
	return suppliers, err
}

// Update persists supplier changes
func (r *GormSupplierRepository) Update(ctx context.Context, supplier *domain.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

// Delete removes a supplier unless medicines still reference it
func (r *GormSupplierRepository) Delete(ctx context.Context, id uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Medicine{}).Where("supplier_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewInvalidState("supplier %d is referenced by %d medicines", id, count)
	}

	result := r.db.WithContext(ctx).Delete(&domain.Supplier{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("supplier", id)
	}
	return nil
}
