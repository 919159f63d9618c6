package repository

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	alertdomain "github.com/pharmacore/pharmacy-api/internal/alert/domain"
	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	"github.com/pharmacore/pharmacy-api/internal/observability/metrics"
	"github.com/pharmacore/pharmacy-api/kafka"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
	"github.com/pharmacore/pharmacy-api/pkg/logger"
)

// AlertDeriver re-evaluates a medicine's alerts inside the adjustment
// transaction so alerts stay consistent with the stock snapshot that
// triggered them.
type AlertDeriver interface {
	MedicineAlerts(ctx context.Context, tx *gorm.DB, m *domain.Medicine) ([]alertdomain.AlertLog, error)
}

// Dispatcher fans out created alerts; implementations must be
// fire-and-forget relative to the calling transaction.
type Dispatcher interface {
	DispatchAll(ctx context.Context, alerts []alertdomain.AlertLog)
}

// GormStockLedger is the single write path for medicine quantities.
type GormStockLedger struct {
	db         *gorm.DB
	deriver    AlertDeriver
	dispatcher Dispatcher
	publisher  *kafka.Publisher
}

// NewStockLedger creates a stock ledger. publisher may be nil.
func NewStockLedger(db *gorm.DB, deriver AlertDeriver, dispatcher Dispatcher, publisher *kafka.Publisher) *GormStockLedger {
	return &GormStockLedger{db: db, deriver: deriver, dispatcher: dispatcher, publisher: publisher}
}

// Adjust applies one quantity change in its own transaction and, after
// commit, dispatches the derived alerts and publishes the ledger event.
func (l *GormStockLedger) Adjust(ctx context.Context, adj domain.Adjustment) (*domain.AdjustResult, error) {
	var res *domain.AdjustResult
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		res, txErr = l.AdjustTx(ctx, tx, adj)
		return txErr
	})
	if err != nil {
		var short *apperrors.InsufficientStockError
		if errors.As(err, &short) {
			metrics.StockAdjustmentsRejected.Inc()
		}
		return nil, err
	}

	metrics.StockAdjustments.WithLabelValues(adj.Action).Inc()
	l.AfterCommit(ctx, res)
	return res, nil
}

// AdjustTx applies one quantity change inside a caller-managed
// transaction. The medicine row is locked for the duration of tx, the new
// quantity and exactly one log entry are written, and the alert deriver
// runs against the updated snapshot. The caller is responsible for
// dispatching the returned alerts after its commit.
func (l *GormStockLedger) AdjustTx(ctx context.Context, tx *gorm.DB, adj domain.Adjustment) (*domain.AdjustResult, error) {
	if !domain.ValidAction(adj.Action) {
		return nil, apperrors.NewValidation("action", "unknown inventory action %q", adj.Action)
	}
	if adj.ActorID == 0 {
		return nil, apperrors.NewValidation("performed_by", "actor is required")
	}

	var med domain.Medicine
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&med, adj.MedicineID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("medicine", adj.MedicineID)
		}
		return nil, err
	}

	next, err := med.AdjustedQuantity(adj.Delta)
	if err != nil {
		return nil, err
	}

	previous := med.Quantity
	med.Quantity = next

	if err := tx.WithContext(ctx).Model(&domain.Medicine{}).
		Where("id = ?", med.ID).
		Update("quantity", next).Error; err != nil {
		return nil, err
	}

	entry := &domain.InventoryLog{
		MedicineID:       med.ID,
		Action:           adj.Action,
		QuantityChange:   adj.Delta,
		PreviousQuantity: previous,
		NewQuantity:      next,
		PerformedByID:    adj.ActorID,
		Reason:           adj.Reason,
		PrescriptionID:   adj.PrescriptionID,
	}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}

	alerts, err := l.deriver.MedicineAlerts(ctx, tx, &med)
	if err != nil {
		return nil, err
	}

	return &domain.AdjustResult{Medicine: &med, Entry: entry, Alerts: alerts}, nil
}

// CheckAvailability locks every demanded medicine row FOR UPDATE inside
// tx and aggregates all shortages into one InsufficientStockError so the
// caller can report every short line in a single response. The locks are
// taken in medicine id order and held until tx finishes, so follow-up
// AdjustTx calls in the same transaction see the checked quantities.
func (l *GormStockLedger) CheckAvailability(ctx context.Context, tx *gorm.DB, demands []domain.Demand) error {
	ordered := make([]domain.Demand, len(demands))
	copy(ordered, demands)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].MedicineID < ordered[j].MedicineID })

	var shortages []apperrors.Shortage
	for _, d := range ordered {
		var med domain.Medicine
		err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&med, d.MedicineID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("medicine", d.MedicineID)
			}
			return err
		}
		if med.Quantity < d.Quantity {
			shortages = append(shortages, apperrors.Shortage{
				MedicineID:   med.ID,
				MedicineName: med.Name,
				Requested:    d.Quantity,
				Available:    med.Quantity,
			})
		}
	}
	if len(shortages) > 0 {
		return &apperrors.InsufficientStockError{Shortages: shortages}
	}
	return nil
}

// AfterCommit fans out the side effects of a committed adjustment. It is
// exposed so operations composing AdjustTx into a larger transaction can
// trigger the same fan-out once their own commit succeeded.
func (l *GormStockLedger) AfterCommit(ctx context.Context, res *domain.AdjustResult) {
	l.dispatcher.DispatchAll(ctx, res.Alerts)

	if l.publisher == nil {
		return
	}
	event := kafka.StockAdjustedEvent{
		MedicineID:       res.Medicine.ID,
		MedicineName:     res.Medicine.Name,
		Action:           res.Entry.Action,
		QuantityChange:   res.Entry.QuantityChange,
		PreviousQuantity: res.Entry.PreviousQuantity,
		NewQuantity:      res.Entry.NewQuantity,
		PerformedBy:      res.Entry.PerformedByID,
		PrescriptionID:   res.Entry.PrescriptionID,
	}
	go func() {
		if err := l.publisher.PublishStockAdjusted(context.WithoutCancel(ctx), event); err != nil {
			logger.WithContext(ctx).Warn().Err(err).
				Uint("medicine_id", event.MedicineID).
				Msg("Failed to publish stock adjusted event")
		}
	}()
}
