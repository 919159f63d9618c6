package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pharmacore/pharmacy-api/internal/alert/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

type fakeAlertRepo struct {
	stored map[uint]domain.AlertLog
}

func newFakeAlertRepo(alerts ...domain.AlertLog) *fakeAlertRepo {
	stored := make(map[uint]domain.AlertLog, len(alerts))
	for _, a := range alerts {
		stored[a.ID] = a
	}
	return &fakeAlertRepo{stored: stored}
}

func (f *fakeAlertRepo) WithTx(tx *gorm.DB) domain.Repository { return f }

func (f *fakeAlertRepo) Create(ctx context.Context, alert *domain.AlertLog) error {
	f.stored[alert.ID] = *alert
	return nil
}

func (f *fakeAlertRepo) GetOrCreateOpen(ctx context.Context, alert *domain.AlertLog) (*domain.AlertLog, bool, error) {
	return alert, true, nil
}

func (f *fakeAlertRepo) FindByID(ctx context.Context, id uint) (*domain.AlertLog, error) {
	a, ok := f.stored[id]
	if !ok {
		return nil, apperrors.NewNotFound("alert", id)
	}
	copied := a
	return &copied, nil
}

func (f *fakeAlertRepo) FindAll(ctx context.Context, filter domain.Filter, limit, offset int) ([]domain.AlertLog, error) {
	return nil, nil
}

func (f *fakeAlertRepo) Unresolved(ctx context.Context) ([]domain.AlertLog, error) { return nil, nil }

func (f *fakeAlertRepo) UnresolvedSince(ctx context.Context, since time.Time) ([]domain.AlertLog, error) {
	return nil, nil
}

func (f *fakeAlertRepo) Critical(ctx context.Context) ([]domain.AlertLog, error) { return nil, nil }

func (f *fakeAlertRepo) Update(ctx context.Context, alert *domain.AlertLog) error {
	f.stored[alert.ID] = *alert
	return nil
}

func (f *fakeAlertRepo) Stats(ctx context.Context) (*domain.Stats, error) { return nil, nil }

func openAlert(id uint) domain.AlertLog {
	return domain.AlertLog{
		ID:        id,
		AlertType: domain.TypeLowStock,
		Severity:  domain.SeverityHigh,
		Title:     "Low stock",
		Message:   "Below reorder level",
	}
}

func TestBulkResolveSkipsMissingAndResolved(t *testing.T) {
	already := openAlert(2)
	already.IsResolved = true
	repo := newFakeAlertRepo(openAlert(1), already, openAlert(3))
	h := NewBulkResolveAlertsHandler(repo)

	// id 9 does not exist, id 2 is already resolved
	resolved, err := h.Handle(context.Background(), BulkResolveAlertsCommand{
		AlertIDs:   []uint{1, 2, 3, 9},
		ResolvedBy: 7,
		Notes:      "Restocked from weekly delivery",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resolved)

	for _, id := range []uint{1, 3} {
		got := repo.stored[id]
		assert.True(t, got.IsResolved)
		require.NotNil(t, got.ResolvedByID)
		assert.Equal(t, uint(7), *got.ResolvedByID)
		assert.NotNil(t, got.ResolvedAt)
		assert.Equal(t, "Restocked from weekly delivery", got.ResolvedNotes)
	}
}

func TestBulkResolveRequiresIDs(t *testing.T) {
	h := NewBulkResolveAlertsHandler(newFakeAlertRepo())

	_, err := h.Handle(context.Background(), BulkResolveAlertsCommand{ResolvedBy: 7})
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "alert_ids", verr.Field)
}

func TestBulkResolveRequiresActor(t *testing.T) {
	h := NewBulkResolveAlertsHandler(newFakeAlertRepo())

	_, err := h.Handle(context.Background(), BulkResolveAlertsCommand{AlertIDs: []uint{1}})
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "resolved_by", verr.Field)
}
