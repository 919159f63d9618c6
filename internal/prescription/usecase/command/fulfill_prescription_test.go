package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	medicinedomain "github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	"github.com/pharmacore/pharmacy-api/internal/prescription/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

type fakeTransactor struct{}

func (fakeTransactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// fakePrescriptionRepo hands out copies and only persists on Update, so a
// handler that bails out before Update leaves the stored row untouched,
// matching what a rolled-back transaction would do.
type fakePrescriptionRepo struct {
	stored         map[uint]domain.Prescription
	fulfilledLines []uint
}

func newFakePrescriptionRepo(prescriptions ...domain.Prescription) *fakePrescriptionRepo {
	stored := make(map[uint]domain.Prescription, len(prescriptions))
	for _, p := range prescriptions {
		stored[p.ID] = p
	}
	return &fakePrescriptionRepo{stored: stored}
}

func (f *fakePrescriptionRepo) WithTx(tx *gorm.DB) domain.Repository { return f }

func (f *fakePrescriptionRepo) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Prescription, error) {
	p, ok := f.stored[id]
	if !ok {
		return nil, apperrors.NewNotFound("prescription", id)
	}
	copied := p
	copied.Medicines = append([]domain.PrescriptionMedicine(nil), p.Medicines...)
	return &copied, nil
}

func (f *fakePrescriptionRepo) FindByID(ctx context.Context, id uint) (*domain.Prescription, error) {
	return f.FindByIDForUpdate(ctx, id)
}

func (f *fakePrescriptionRepo) Create(ctx context.Context, p *domain.Prescription) error {
	f.stored[p.ID] = *p
	return nil
}

func (f *fakePrescriptionRepo) FindAll(ctx context.Context, filter domain.Filter, limit, offset int) ([]domain.Prescription, error) {
	return nil, nil
}

func (f *fakePrescriptionRepo) Update(ctx context.Context, p *domain.Prescription) error {
	f.stored[p.ID] = *p
	return nil
}

func (f *fakePrescriptionRepo) UpdateLine(ctx context.Context, line *domain.PrescriptionMedicine) error {
	f.fulfilledLines = append(f.fulfilledLines, line.MedicineID)
	return nil
}

func (f *fakePrescriptionRepo) ReplaceLines(ctx context.Context, prescriptionID uint, lines []domain.PrescriptionMedicine) error {
	return nil
}

func (f *fakePrescriptionRepo) Stats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{}
	for _, p := range f.stored {
		stats.Total++
		switch p.Status {
		case domain.StatusPending:
			stats.Pending++
			if p.IsUrgent {
				stats.UrgentPending++
			}
		case domain.StatusPartiallyFulfilled:
			stats.PartiallyFulfilled++
		case domain.StatusFulfilled:
			stats.Fulfilled++
		case domain.StatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

func (f *fakePrescriptionRepo) PendingOlderThan(ctx context.Context, age time.Duration) ([]domain.Prescription, error) {
	return nil, nil
}

type fakeLedger struct {
	availabilityErr error
	adjustments     []medicinedomain.Adjustment
	afterCommits    int
}

func (f *fakeLedger) AdjustTx(ctx context.Context, tx *gorm.DB, adj medicinedomain.Adjustment) (*medicinedomain.AdjustResult, error) {
	f.adjustments = append(f.adjustments, adj)
	return &medicinedomain.AdjustResult{}, nil
}

func (f *fakeLedger) CheckAvailability(ctx context.Context, tx *gorm.DB, demands []medicinedomain.Demand) error {
	return f.availabilityErr
}

func (f *fakeLedger) AfterCommit(ctx context.Context, res *medicinedomain.AdjustResult) {
	f.afterCommits++
}

func pendingPrescription() domain.Prescription {
	return domain.Prescription{
		ID:             1,
		Number:         "RX-TEST0001",
		PatientID:      1,
		PrescribedByID: 3,
		Status:         domain.StatusPending,
		DateIssued:     time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
		Medicines: []domain.PrescriptionMedicine{
			{ID: 1, PrescriptionID: 1, MedicineID: 10, Quantity: 2},
			{ID: 2, PrescriptionID: 1, MedicineID: 20, Quantity: 5},
		},
	}
}

func TestFulfillDeductsEveryLine(t *testing.T) {
	repo := newFakePrescriptionRepo(pendingPrescription())
	ledger := &fakeLedger{}
	h := NewFulfillPrescriptionHandler(fakeTransactor{}, repo, ledger)

	p, err := h.Handle(context.Background(), FulfillPrescriptionCommand{
		PrescriptionID: 1,
		FulfilledByID:  7,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFulfilled, p.Status)
	require.NotNil(t, p.FulfilledByID)
	assert.Equal(t, uint(7), *p.FulfilledByID)
	assert.NotNil(t, p.DateFulfilled)

	require.Len(t, ledger.adjustments, 2)
	assert.Equal(t, -2, ledger.adjustments[0].Delta)
	assert.Equal(t, -5, ledger.adjustments[1].Delta)
	for _, adj := range ledger.adjustments {
		assert.Equal(t, medicinedomain.ActionPrescriptionFulfill, adj.Action)
		assert.Equal(t, uint(7), adj.ActorID)
		require.NotNil(t, adj.PrescriptionID)
		assert.Equal(t, uint(1), *adj.PrescriptionID)
	}
	assert.Equal(t, []uint{10, 20}, repo.fulfilledLines)
	assert.Equal(t, 2, ledger.afterCommits)

	assert.Equal(t, domain.StatusFulfilled, repo.stored[1].Status)
}

func TestFulfillAbortsOnShortage(t *testing.T) {
	repo := newFakePrescriptionRepo(pendingPrescription())
	ledger := &fakeLedger{
		availabilityErr: &apperrors.InsufficientStockError{
			Shortages: []apperrors.Shortage{{MedicineID: 20, Requested: 5, Available: 1}},
		},
	}
	h := NewFulfillPrescriptionHandler(fakeTransactor{}, repo, ledger)

	_, err := h.Handle(context.Background(), FulfillPrescriptionCommand{
		PrescriptionID: 1,
		FulfilledByID:  7,
	})
	var serr *apperrors.InsufficientStockError
	require.True(t, errors.As(err, &serr))

	assert.Empty(t, ledger.adjustments, "no line may be deducted when any line is short")
	assert.Zero(t, ledger.afterCommits)
	assert.Equal(t, domain.StatusPending, repo.stored[1].Status)
}

func TestFulfillPartialSkipsStock(t *testing.T) {
	repo := newFakePrescriptionRepo(pendingPrescription())
	ledger := &fakeLedger{}
	h := NewFulfillPrescriptionHandler(fakeTransactor{}, repo, ledger)

	p, err := h.Handle(context.Background(), FulfillPrescriptionCommand{
		PrescriptionID: 1,
		FulfilledByID:  7,
		Partial:        true,
		Notes:          "Insulin on backorder",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPartiallyFulfilled, p.Status)
	assert.Equal(t, "Fulfillment notes: Insulin on backorder", p.Notes)
	require.NotNil(t, p.FulfilledByID)
	assert.Equal(t, uint(7), *p.FulfilledByID)
	assert.Empty(t, ledger.adjustments)
	assert.Zero(t, ledger.afterCommits)
}

func TestFulfillKeepsExistingNotes(t *testing.T) {
	p := pendingPrescription()
	p.Notes = "Take with food"
	repo := newFakePrescriptionRepo(p)
	h := NewFulfillPrescriptionHandler(fakeTransactor{}, repo, &fakeLedger{})

	got, err := h.Handle(context.Background(), FulfillPrescriptionCommand{
		PrescriptionID: 1,
		FulfilledByID:  7,
		Notes:          "Dispensed generic equivalent",
	})
	require.NoError(t, err)
	assert.Equal(t, "Take with food\nFulfillment notes: Dispensed generic equivalent", got.Notes)
}

func TestFulfillAfterPartial(t *testing.T) {
	p := pendingPrescription()
	p.Status = domain.StatusPartiallyFulfilled
	repo := newFakePrescriptionRepo(p)
	ledger := &fakeLedger{}
	h := NewFulfillPrescriptionHandler(fakeTransactor{}, repo, ledger)

	got, err := h.Handle(context.Background(), FulfillPrescriptionCommand{
		PrescriptionID: 1,
		FulfilledByID:  7,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, got.Status)
	assert.Len(t, ledger.adjustments, 2)
}

func TestFulfillRejectsTerminalStatus(t *testing.T) {
	for _, status := range []string{domain.StatusFulfilled, domain.StatusCancelled} {
		t.Run(status, func(t *testing.T) {
			p := pendingPrescription()
			p.Status = status
			repo := newFakePrescriptionRepo(p)
			ledger := &fakeLedger{}
			h := NewFulfillPrescriptionHandler(fakeTransactor{}, repo, ledger)

			_, err := h.Handle(context.Background(), FulfillPrescriptionCommand{
				PrescriptionID: 1,
				FulfilledByID:  7,
			})
			var ierr *apperrors.InvalidStateError
			require.True(t, errors.As(err, &ierr))
			assert.Empty(t, ledger.adjustments)
		})
	}
}

func TestFulfillRequiresActor(t *testing.T) {
	h := NewFulfillPrescriptionHandler(fakeTransactor{}, newFakePrescriptionRepo(), &fakeLedger{})

	_, err := h.Handle(context.Background(), FulfillPrescriptionCommand{PrescriptionID: 1})
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "fulfilled_by", verr.Field)
}

func TestCancelPendingPrescription(t *testing.T) {
	repo := newFakePrescriptionRepo(pendingPrescription())
	h := NewCancelPrescriptionHandler(fakeTransactor{}, repo)

	p, err := h.Handle(context.Background(), CancelPrescriptionCommand{
		PrescriptionID: 1,
		ActorID:        7,
		Reason:         "Patient switched treatment",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, p.Status)
	assert.NotNil(t, p.DateCancelled)
	assert.Equal(t, "Cancellation reason: Patient switched treatment", p.Notes)
	assert.Equal(t, domain.StatusCancelled, repo.stored[1].Status)
}

func TestCancelAlreadyCancelled(t *testing.T) {
	p := pendingPrescription()
	p.Status = domain.StatusCancelled
	h := NewCancelPrescriptionHandler(fakeTransactor{}, newFakePrescriptionRepo(p))

	_, err := h.Handle(context.Background(), CancelPrescriptionCommand{PrescriptionID: 1, ActorID: 7})
	var ierr *apperrors.InvalidStateError
	require.True(t, errors.As(err, &ierr))
	assert.Contains(t, ierr.Error(), "already cancelled")
}

// Cancelling a fulfilled prescription is a record-keeping action: the
// status flips but the stock already deducted stays deducted.
func TestCancelFulfilledPrescription(t *testing.T) {
	p := pendingPrescription()
	p.Status = domain.StatusFulfilled
	p.Notes = "Fulfillment notes: Dispensed in full"
	repo := newFakePrescriptionRepo(p)
	h := NewCancelPrescriptionHandler(fakeTransactor{}, repo)

	got, err := h.Handle(context.Background(), CancelPrescriptionCommand{
		PrescriptionID: 1,
		ActorID:        7,
		Reason:         "Dispensing error reported",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.NotNil(t, got.DateCancelled)
	assert.Equal(t, "Fulfillment notes: Dispensed in full\nCancellation reason: Dispensing error reported", got.Notes)
	assert.Equal(t, domain.StatusCancelled, repo.stored[1].Status)
}
