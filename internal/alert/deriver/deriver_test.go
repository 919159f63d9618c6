package deriver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	alertdomain "github.com/pharmacore/pharmacy-api/internal/alert/domain"
	medicinedomain "github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	presdomain "github.com/pharmacore/pharmacy-api/internal/prescription/domain"
)

// fakeAlertRepo keeps open alerts in memory and mirrors the repository's
// dedup key, so derivation rules and dedup are exercised together.
type fakeAlertRepo struct {
	open   []alertdomain.AlertLog
	nextID uint
}

func (f *fakeAlertRepo) WithTx(tx *gorm.DB) alertdomain.Repository { return f }

func (f *fakeAlertRepo) GetOrCreateOpen(ctx context.Context, alert *alertdomain.AlertLog) (*alertdomain.AlertLog, bool, error) {
	for i := range f.open {
		existing := &f.open[i]
		if existing.IsResolved || existing.AlertType != alert.AlertType {
			continue
		}
		switch {
		case alert.MedicineID != nil:
			if existing.MedicineID != nil && *existing.MedicineID == *alert.MedicineID {
				return existing, false, nil
			}
		case alert.PrescriptionID != nil:
			if existing.PrescriptionID != nil && *existing.PrescriptionID == *alert.PrescriptionID {
				return existing, false, nil
			}
		}
	}
	f.nextID++
	alert.ID = f.nextID
	f.open = append(f.open, *alert)
	return alert, true, nil
}

func (f *fakeAlertRepo) Create(ctx context.Context, alert *alertdomain.AlertLog) error { return nil }
func (f *fakeAlertRepo) FindByID(ctx context.Context, id uint) (*alertdomain.AlertLog, error) {
	return nil, nil
}
func (f *fakeAlertRepo) FindAll(ctx context.Context, filter alertdomain.Filter, limit, offset int) ([]alertdomain.AlertLog, error) {
	return nil, nil
}
func (f *fakeAlertRepo) Unresolved(ctx context.Context) ([]alertdomain.AlertLog, error) {
	return f.open, nil
}
func (f *fakeAlertRepo) UnresolvedSince(ctx context.Context, since time.Time) ([]alertdomain.AlertLog, error) {
	return f.open, nil
}
func (f *fakeAlertRepo) Critical(ctx context.Context) ([]alertdomain.AlertLog, error) {
	return nil, nil
}
func (f *fakeAlertRepo) Update(ctx context.Context, alert *alertdomain.AlertLog) error { return nil }
func (f *fakeAlertRepo) Stats(ctx context.Context) (*alertdomain.Stats, error)         { return nil, nil }

func newTestDeriver() (*Deriver, *fakeAlertRepo) {
	repo := &fakeAlertRepo{}
	d := New(repo)
	d.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return d, repo
}

func farExpiry() time.Time {
	return time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
}

func TestMedicineAlertsLowStock(t *testing.T) {
	d, _ := newTestDeriver()

	med := &medicinedomain.Medicine{ID: 1, Name: "Ibuprofen", Quantity: 5, ThresholdAlert: 10, ExpiryDate: farExpiry()}
	created, err := d.MedicineAlerts(context.Background(), nil, med)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, alertdomain.TypeLowStock, created[0].AlertType)
	assert.Equal(t, alertdomain.SeverityHigh, created[0].Severity)
	require.NotNil(t, created[0].MedicineID)
	assert.Equal(t, uint(1), *created[0].MedicineID)
}

func TestMedicineAlertsZeroQuantityIsCritical(t *testing.T) {
	d, _ := newTestDeriver()

	med := &medicinedomain.Medicine{ID: 1, Name: "Ibuprofen", Quantity: 0, ThresholdAlert: 10, ExpiryDate: farExpiry()}
	created, err := d.MedicineAlerts(context.Background(), nil, med)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, alertdomain.TypeStockCritical, created[0].AlertType)
	assert.Equal(t, alertdomain.SeverityCritical, created[0].Severity)
}

func TestMedicineAlertsAboveThresholdIsQuiet(t *testing.T) {
	d, _ := newTestDeriver()

	med := &medicinedomain.Medicine{ID: 1, Name: "Ibuprofen", Quantity: 11, ThresholdAlert: 10, ExpiryDate: farExpiry()}
	created, err := d.MedicineAlerts(context.Background(), nil, med)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestMedicineAlertsExpiry(t *testing.T) {
	tests := []struct {
		name     string
		expiry   time.Time
		wantType string
	}{
		{"inside warning window", time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC), alertdomain.TypeExpiryWarning},
		{"expires today", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), alertdomain.TypeExpiryWarning},
		{"already expired", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), alertdomain.TypeExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDeriver()
			med := &medicinedomain.Medicine{ID: 2, Name: "Insulin", Quantity: 100, ThresholdAlert: 10, ExpiryDate: tt.expiry}
			created, err := d.MedicineAlerts(context.Background(), nil, med)
			require.NoError(t, err)
			require.Len(t, created, 1)
			assert.Equal(t, tt.wantType, created[0].AlertType)
		})
	}
}

func TestMedicineAlertsLowStockAndExpiryTogether(t *testing.T) {
	d, _ := newTestDeriver()

	med := &medicinedomain.Medicine{ID: 3, Name: "Insulin", Quantity: 0, ThresholdAlert: 10, ExpiryDate: time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)}
	created, err := d.MedicineAlerts(context.Background(), nil, med)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, alertdomain.TypeStockCritical, created[0].AlertType)
	assert.Equal(t, alertdomain.TypeExpiryWarning, created[1].AlertType)
}

func TestMedicineAlertsDeduplicated(t *testing.T) {
	d, repo := newTestDeriver()

	med := &medicinedomain.Medicine{ID: 1, Name: "Ibuprofen", Quantity: 5, ThresholdAlert: 10, ExpiryDate: farExpiry()}
	first, err := d.MedicineAlerts(context.Background(), nil, med)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Same condition again: the open alert absorbs it, nothing new
	second, err := d.MedicineAlerts(context.Background(), nil, med)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Len(t, repo.open, 1)
}

func TestPrescriptionAlertsUrgentOnCreate(t *testing.T) {
	d, _ := newTestDeriver()

	p := &presdomain.Prescription{
		ID:             7,
		Number:         "RX-AB12CD34",
		PrescribedByID: 3,
		Status:         presdomain.StatusPending,
		IsUrgent:       true,
		DateIssued:     time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC),
	}
	created, err := d.PrescriptionAlerts(context.Background(), nil, p, true)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, alertdomain.TypePrescriptionUrgent, created[0].AlertType)
	assert.Equal(t, alertdomain.SeverityHigh, created[0].Severity)
	require.NotNil(t, created[0].PrescriptionID)
	assert.Equal(t, uint(7), *created[0].PrescriptionID)
}

func TestPrescriptionAlertsNonUrgentCreateIsQuiet(t *testing.T) {
	d, _ := newTestDeriver()

	p := &presdomain.Prescription{
		ID:         8,
		Number:     "RX-11223344",
		Status:     presdomain.StatusPending,
		DateIssued: time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC),
	}
	created, err := d.PrescriptionAlerts(context.Background(), nil, p, true)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestPrescriptionAlertsStalePending(t *testing.T) {
	d, _ := newTestDeriver()

	p := &presdomain.Prescription{
		ID:         9,
		Number:     "RX-55667788",
		Status:     presdomain.StatusPending,
		DateIssued: time.Date(2025, 6, 13, 11, 0, 0, 0, time.UTC),
	}
	created, err := d.PrescriptionAlerts(context.Background(), nil, p, false)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, alertdomain.TypePrescriptionPending, created[0].AlertType)
	assert.Equal(t, alertdomain.SeverityMedium, created[0].Severity)
}

func TestPrescriptionAlertsFreshPendingIsQuiet(t *testing.T) {
	d, _ := newTestDeriver()

	p := &presdomain.Prescription{
		ID:         10,
		Number:     "RX-99001122",
		Status:     presdomain.StatusPending,
		DateIssued: time.Date(2025, 6, 15, 2, 0, 0, 0, time.UTC),
	}
	created, err := d.PrescriptionAlerts(context.Background(), nil, p, false)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestPrescriptionAlertsUrgentDedup(t *testing.T) {
	d, repo := newTestDeriver()

	p := &presdomain.Prescription{
		ID:         11,
		Number:     "RX-33445566",
		Status:     presdomain.StatusPending,
		IsUrgent:   true,
		DateIssued: time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC),
	}
	first, err := d.PrescriptionAlerts(context.Background(), nil, p, true)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := d.PrescriptionAlerts(context.Background(), nil, p, true)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Len(t, repo.open, 1)
}
