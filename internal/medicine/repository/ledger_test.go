package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	alertdomain "github.com/pharmacore/pharmacy-api/internal/alert/domain"
	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	"github.com/pharmacore/pharmacy-api/internal/observability/metrics"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

type stubDeriver struct {
	alerts []alertdomain.AlertLog
}

func (s stubDeriver) MedicineAlerts(ctx context.Context, tx *gorm.DB, m *domain.Medicine) ([]alertdomain.AlertLog, error) {
	return s.alerts, nil
}

type recordingDispatcher struct {
	dispatched []alertdomain.AlertLog
}

func (d *recordingDispatcher) DispatchAll(ctx context.Context, alerts []alertdomain.AlertLog) {
	d.dispatched = append(d.dispatched, alerts...)
}

func newMockLedger(t *testing.T, deriver AlertDeriver, dispatcher Dispatcher) (*GormStockLedger, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	return NewStockLedger(db, deriver, dispatcher, nil), mock
}

func medicineRows(id uint, name string, quantity int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "quantity", "threshold_alert", "is_active"}).
		AddRow(id, name, quantity, 10, true)
}

func TestLedgerAdjustWritesQuantityAndLog(t *testing.T) {
	alert := alertdomain.AlertLog{AlertType: alertdomain.TypeLowStock, Severity: alertdomain.SeverityHigh}
	dispatcher := &recordingDispatcher{}
	ledger, mock := newMockLedger(t, stubDeriver{alerts: []alertdomain.AlertLog{alert}}, dispatcher)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "medicines" WHERE "medicines"\."id" = \$1(.+)FOR UPDATE`).
		WillReturnRows(medicineRows(1, "Amoxicillin 500mg", 20))
	mock.ExpectExec(`UPDATE "medicines" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "inventory_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	res, err := ledger.Adjust(context.Background(), domain.Adjustment{
		MedicineID: 1,
		Delta:      -5,
		Action:     domain.ActionStockRemove,
		ActorID:    7,
		Reason:     "Damaged blister packs",
	})
	require.NoError(t, err)

	assert.Equal(t, 15, res.Medicine.Quantity)
	assert.Equal(t, 20, res.Entry.PreviousQuantity)
	assert.Equal(t, 15, res.Entry.NewQuantity)
	assert.Equal(t, -5, res.Entry.QuantityChange)
	assert.Equal(t, domain.ActionStockRemove, res.Entry.Action)
	assert.Equal(t, uint(7), res.Entry.PerformedByID)
	assert.Equal(t, "Damaged blister packs", res.Entry.Reason)

	assert.Len(t, dispatcher.dispatched, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// An overdraw rolls back without writing the quantity or a log row, and
// is the only rejection counted by the rejected-adjustments metric.
func TestLedgerAdjustRejectsOverdraw(t *testing.T) {
	ledger, mock := newMockLedger(t, stubDeriver{}, &recordingDispatcher{})

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "medicines" WHERE "medicines"\."id" = \$1(.+)FOR UPDATE`).
		WillReturnRows(medicineRows(1, "Insulin", 3))
	mock.ExpectRollback()

	before := testutil.ToFloat64(metrics.StockAdjustmentsRejected)
	_, err := ledger.Adjust(context.Background(), domain.Adjustment{
		MedicineID: 1,
		Delta:      -10,
		Action:     domain.ActionStockRemove,
		ActorID:    7,
	})

	var short *apperrors.InsufficientStockError
	require.True(t, errors.As(err, &short))
	require.Len(t, short.Shortages, 1)
	assert.Equal(t, 10, short.Shortages[0].Requested)
	assert.Equal(t, 3, short.Shortages[0].Available)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.StockAdjustmentsRejected))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerAdjustUnknownMedicineNotCountedAsRejected(t *testing.T) {
	ledger, mock := newMockLedger(t, stubDeriver{}, &recordingDispatcher{})

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "medicines" WHERE "medicines"\."id" = \$1(.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	before := testutil.ToFloat64(metrics.StockAdjustmentsRejected)
	_, err := ledger.Adjust(context.Background(), domain.Adjustment{
		MedicineID: 99,
		Delta:      -1,
		Action:     domain.ActionStockRemove,
		ActorID:    7,
	})

	var nf *apperrors.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, before, testutil.ToFloat64(metrics.StockAdjustmentsRejected))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerCheckAvailabilityAggregatesShortages(t *testing.T) {
	ledger, mock := newMockLedger(t, stubDeriver{}, &recordingDispatcher{})

	// Rows are locked in medicine id order regardless of demand order
	mock.ExpectQuery(`SELECT \* FROM "medicines" WHERE "medicines"\."id" = \$1(.+)FOR UPDATE`).
		WithArgs(10, 1).
		WillReturnRows(medicineRows(10, "Paracetamol", 1))
	mock.ExpectQuery(`SELECT \* FROM "medicines" WHERE "medicines"\."id" = \$1(.+)FOR UPDATE`).
		WithArgs(20, 1).
		WillReturnRows(medicineRows(20, "Ibuprofen", 0))

	err := ledger.CheckAvailability(context.Background(), ledger.db, []domain.Demand{
		{MedicineID: 20, Quantity: 2},
		{MedicineID: 10, Quantity: 3},
	})

	var short *apperrors.InsufficientStockError
	require.True(t, errors.As(err, &short))
	require.Len(t, short.Shortages, 2)
	assert.Equal(t, uint(10), short.Shortages[0].MedicineID)
	assert.Equal(t, 3, short.Shortages[0].Requested)
	assert.Equal(t, 1, short.Shortages[0].Available)
	assert.Equal(t, uint(20), short.Shortages[1].MedicineID)
	assert.Equal(t, 2, short.Shortages[1].Requested)
	assert.Equal(t, 0, short.Shortages[1].Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}
