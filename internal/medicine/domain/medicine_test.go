package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

func TestAdjustedQuantity(t *testing.T) {
	med := &Medicine{ID: 1, Name: "Amoxicillin", Quantity: 10}

	t.Run("positive delta", func(t *testing.T) {
		next, err := med.AdjustedQuantity(5)
		require.NoError(t, err)
		assert.Equal(t, 15, next)
		assert.Equal(t, 10, med.Quantity, "validation must not mutate the medicine")
	})

	t.Run("negative delta", func(t *testing.T) {
		next, err := med.AdjustedQuantity(-10)
		require.NoError(t, err)
		assert.Equal(t, 0, next)
	})

	t.Run("zero delta rejected", func(t *testing.T) {
		_, err := med.AdjustedQuantity(0)
		var verr *apperrors.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "quantity_change", verr.Field)
	})

	t.Run("overdraw rejected with shortage details", func(t *testing.T) {
		_, err := med.AdjustedQuantity(-11)
		var serr *apperrors.InsufficientStockError
		require.True(t, errors.As(err, &serr))
		require.Len(t, serr.Shortages, 1)
		assert.Equal(t, uint(1), serr.Shortages[0].MedicineID)
		assert.Equal(t, 11, serr.Shortages[0].Requested)
		assert.Equal(t, 10, serr.Shortages[0].Available)
	})
}

func TestDaysUntilExpiry(t *testing.T) {
	today := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expiry time.Time
		want   int
	}{
		{"expires today", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), 0},
		{"expires tomorrow", time.Date(2025, 6, 16, 23, 0, 0, 0, time.UTC), 1},
		{"expired yesterday", time.Date(2025, 6, 14, 1, 0, 0, 0, time.UTC), -1},
		{"thirty days out", time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			med := &Medicine{ExpiryDate: tt.expiry}
			assert.Equal(t, tt.want, med.DaysUntilExpiry(today))
		})
	}
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory("ANTIBIOTIC"))
	assert.True(t, ValidCategory("OTHER"))
	assert.False(t, ValidCategory("antibiotic"))
	assert.False(t, ValidCategory(""))
}

func TestValidAction(t *testing.T) {
	for _, action := range []string{
		ActionStockAdd, ActionStockRemove, ActionStockAdjust,
		ActionPrescriptionFulfill, ActionPrescriptionCancel,
		ActionDiscarded, ActionReceivedFromSupplier,
	} {
		assert.True(t, ValidAction(action), action)
	}
	assert.False(t, ValidAction("STOCK_MAGIC"))
}
