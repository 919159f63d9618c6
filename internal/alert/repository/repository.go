package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pharmacore/pharmacy-api/internal/alert/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// GormAlertRepository is the gorm-backed alert store
type GormAlertRepository struct {
	db *gorm.DB
}

// NewGormAlertRepository creates a new alert repository
func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

// AutoMigrate migrates the alert tables
func (r *GormAlertRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.AlertLog{}, &domain.AlertPreference{})
}

// WithTx rebinds the repository to a caller-managed transaction
func (r *GormAlertRepository) WithTx(tx *gorm.DB) domain.Repository {
	return &GormAlertRepository{db: tx}
}

// Create inserts a new alert
func (r *GormAlertRepository) Create(ctx context.Context, alert *domain.AlertLog) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

// GetOrCreateOpen returns the open alert for the same dedup key if one
// exists, otherwise inserts the given alert. Callers hold the row lock of
// the triggering medicine or prescription, which serializes concurrent
// derivations for the same entity.
func (r *GormAlertRepository) GetOrCreateOpen(ctx context.Context, alert *domain.AlertLog) (*domain.AlertLog, bool, error) {
	q := r.db.WithContext(ctx).
		Where("alert_type = ? AND is_resolved = ?", alert.AlertType, false)
	switch {
	case alert.MedicineID != nil:
		q = q.Where("medicine_id = ?", *alert.MedicineID)
	case alert.PrescriptionID != nil:
		q = q.Where("prescription_id = ?", *alert.PrescriptionID)
	}

	var existing domain.AlertLog
	err := q.First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		return nil, false, err
	}
	return alert, true, nil
}

// FindByID returns one alert
func (r *GormAlertRepository) FindByID(ctx context.Context, id uint) (*domain.AlertLog, error) {
	var alert domain.AlertLog
	err := r.db.WithContext(ctx).First(&alert, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("alert", id)
		}
		return nil, err
	}
	return &alert, nil
}

// FindAll lists alerts matching the filter
func (r *GormAlertRepository) FindAll(ctx context.Context, filter domain.Filter, limit, offset int) ([]domain.AlertLog, error) {
	q := r.db.WithContext(ctx).Model(&domain.AlertLog{})
	if filter.AlertType != "" {
		q = q.Where("alert_type = ?", filter.AlertType)
	}
	if filter.Severity != "" {
		q = q.Where("severity = ?", filter.Severity)
	}
	if filter.Resolved != nil {
		q = q.Where("is_resolved = ?", *filter.Resolved)
	}
	if filter.MedicineID != 0 {
		q = q.Where("medicine_id = ?", filter.MedicineID)
	}
	if filter.PrescriptionID != 0 {
		q = q.Where("prescription_id = ?", filter.PrescriptionID)
	}
	if filter.CreatedAfter != nil {
		q = q.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		q = q.Where("created_at <= ?", *filter.CreatedBefore)
	}

	var alerts []domain.AlertLog
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&alerts).Error
	return alerts, err
}

// Unresolved lists all open alerts, newest first
func (r *GormAlertRepository) Unresolved(ctx context.Context) ([]domain.AlertLog, error) {
	var alerts []domain.AlertLog
	err := r.db.WithContext(ctx).
		Where("is_resolved = ?", false).
		Order("created_at DESC").
		Find(&alerts).Error
	return alerts, err
}

// UnresolvedSince lists open alerts created after the given time
func (r *GormAlertRepository) UnresolvedSince(ctx context.Context, since time.Time) ([]domain.AlertLog, error) {
	var alerts []domain.AlertLog
	err := r.db.WithContext(ctx).
		Where("is_resolved = ? AND created_at >= ?", false, since).
		Order("created_at DESC").
		Find(&alerts).Error
	return alerts, err
}

// Critical lists open CRITICAL and HIGH alerts
func (r *GormAlertRepository) Critical(ctx context.Context) ([]domain.AlertLog, error) {
	var alerts []domain.AlertLog
	err := r.db.WithContext(ctx).
		Where("is_resolved = ? AND severity IN ?", false, []string{domain.SeverityCritical, domain.SeverityHigh}).
		Order("created_at DESC").
		Find(&alerts).Error
	return alerts, err
}

// Update persists alert changes (resolution)
func (r *GormAlertRepository) Update(ctx context.Context, alert *domain.AlertLog) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

// Stats aggregates alert counts
func (r *GormAlertRepository) Stats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{
		BySeverity: make(map[string]int64),
		ByType:     make(map[string]int64),
	}

	if err := r.db.WithContext(ctx).Model(&domain.AlertLog{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&domain.AlertLog{}).
		Where("is_resolved = ?", false).Count(&stats.Unresolved).Error; err != nil {
		return nil, err
	}
	stats.Resolved = stats.Total - stats.Unresolved

	type bucket struct {
		Key   string
		Count int64
	}

	var bySeverity []bucket
	if err := r.db.WithContext(ctx).Model(&domain.AlertLog{}).
		Select("severity AS key, COUNT(*) AS count").
		Where("is_resolved = ?", false).
		Group("severity").
		Scan(&bySeverity).Error; err != nil {
		return nil, err
	}
	for _, b := range bySeverity {
		stats.BySeverity[b.Key] = b.Count
	}

	var byType []bucket
	if err := r.db.WithContext(ctx).Model(&domain.AlertLog{}).
		Select("alert_type AS key, COUNT(*) AS count").
		Where("is_resolved = ?", false).
		Group("alert_type").
		Scan(&byType).Error; err != nil {
		return nil, err
	}
	for _, b := range byType {
		stats.ByType[b.Key] = b.Count
	}

	return stats, nil
}
