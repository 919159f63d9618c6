package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pharmacore/pharmacy-api/internal/alert/domain"
)

// GormPreferenceRepository is the gorm-backed preference store
type GormPreferenceRepository struct {
	db *gorm.DB
}

// NewGormPreferenceRepository creates a new preference repository
func NewGormPreferenceRepository(db *gorm.DB) *GormPreferenceRepository {
	return &GormPreferenceRepository{db: db}
}

// FindByUserID returns the preference row for a user, gorm.ErrRecordNotFound
// when the user never saved one.
func (r *GormPreferenceRepository) FindByUserID(ctx context.Context, userID uint) (*domain.AlertPreference, error) {
	var pref domain.AlertPreference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// GetOrCreate returns the user's preference, creating the deliver-everything
// default when none exists.
func (r *GormPreferenceRepository) GetOrCreate(ctx context.Context, userID uint) (*domain.AlertPreference, error) {
	pref, err := r.FindByUserID(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pref = domain.DefaultPreference(userID)
	if err := r.db.WithContext(ctx).Create(pref).Error; err != nil {
		return nil, err
	}
	return pref, nil
}

// Save persists preference changes
func (r *GormPreferenceRepository) Save(ctx context.Context, pref *domain.AlertPreference) error {
	return r.db.WithContext(ctx).Save(pref).Error
}
