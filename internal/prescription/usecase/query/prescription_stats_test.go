package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacore/pharmacy-api/internal/prescription/domain"
)

type stubStatsRepo struct {
	domain.Repository
	stats *domain.Stats
}

func (s stubStatsRepo) Stats(ctx context.Context) (*domain.Stats, error) {
	return s.stats, nil
}

func TestPrescriptionStats(t *testing.T) {
	want := &domain.Stats{
		Total:              12,
		Pending:            4,
		PartiallyFulfilled: 1,
		Fulfilled:          5,
		Cancelled:          2,
		UrgentPending:      3,
	}
	h := NewPrescriptionStatsHandler(stubStatsRepo{stats: want})

	got, err := h.Handle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
