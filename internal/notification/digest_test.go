package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	alertdomain "github.com/pharmacore/pharmacy-api/internal/alert/domain"
)

type fakeAlertRepo struct {
	unresolved []alertdomain.AlertLog
	since      time.Time
}

func (f *fakeAlertRepo) WithTx(tx *gorm.DB) alertdomain.Repository { return f }
func (f *fakeAlertRepo) Create(ctx context.Context, alert *alertdomain.AlertLog) error {
	return nil
}
func (f *fakeAlertRepo) GetOrCreateOpen(ctx context.Context, alert *alertdomain.AlertLog) (*alertdomain.AlertLog, bool, error) {
	return alert, true, nil
}
func (f *fakeAlertRepo) FindByID(ctx context.Context, id uint) (*alertdomain.AlertLog, error) {
	return nil, nil
}
func (f *fakeAlertRepo) FindAll(ctx context.Context, filter alertdomain.Filter, limit, offset int) ([]alertdomain.AlertLog, error) {
	return nil, nil
}
func (f *fakeAlertRepo) Unresolved(ctx context.Context) ([]alertdomain.AlertLog, error) {
	return f.unresolved, nil
}
func (f *fakeAlertRepo) UnresolvedSince(ctx context.Context, since time.Time) ([]alertdomain.AlertLog, error) {
	f.since = since
	return f.unresolved, nil
}
func (f *fakeAlertRepo) Critical(ctx context.Context) ([]alertdomain.AlertLog, error) {
	return nil, nil
}
func (f *fakeAlertRepo) Update(ctx context.Context, alert *alertdomain.AlertLog) error { return nil }
func (f *fakeAlertRepo) Stats(ctx context.Context) (*alertdomain.Stats, error)         { return nil, nil }

func TestDigestAllClear(t *testing.T) {
	b := NewDigestBuilder(&fakeAlertRepo{})

	message, count, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Contains(t, message, "No unresolved alerts")
}

func TestDigestCountsBySeverityAndType(t *testing.T) {
	repo := &fakeAlertRepo{unresolved: []alertdomain.AlertLog{
		{AlertType: alertdomain.TypeLowStock, Severity: alertdomain.SeverityHigh},
		{AlertType: alertdomain.TypeLowStock, Severity: alertdomain.SeverityHigh},
		{AlertType: alertdomain.TypeStockCritical, Severity: alertdomain.SeverityCritical},
		{AlertType: alertdomain.TypeExpiryWarning, Severity: alertdomain.SeverityHigh},
	}}
	b := NewDigestBuilder(repo)
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	message, count, err := b.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, count)
	assert.Equal(t, now.Add(-DigestWindow), repo.since)
	assert.Contains(t, message, "4 unresolved alerts")
	assert.Contains(t, message, "🚨 CRITICAL: 1")
	assert.Contains(t, message, "⚠️ HIGH: 3")
	assert.Contains(t, message, "LOW_STOCK: 2")
	assert.Contains(t, message, "STOCK_CRITICAL: 1")
	assert.Contains(t, message, "EXPIRY_WARNING: 1")
	assert.NotContains(t, message, "MEDIUM")
}
