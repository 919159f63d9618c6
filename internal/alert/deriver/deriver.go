// Package deriver inspects medicine and prescription state after each
// mutation and emits deduplicated alert records. It never resolves alerts;
// resolution is always an explicit user action.
package deriver

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	alertdomain "github.com/pharmacore/pharmacy-api/internal/alert/domain"
	medicinedomain "github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	"github.com/pharmacore/pharmacy-api/internal/observability/metrics"
	presdomain "github.com/pharmacore/pharmacy-api/internal/prescription/domain"
)

const (
	// ExpiryWarningDays is the look-ahead window for expiry warnings
	ExpiryWarningDays = 30
	// PendingAlertAge is how long a prescription may sit PENDING before
	// an alert is raised
	PendingAlertAge = 24 * time.Hour
)

// Deriver derives alerts from entity state
type Deriver struct {
	alerts alertdomain.Repository
	now    func() time.Time
}

// New creates a Deriver
func New(alerts alertdomain.Repository) *Deriver {
	return &Deriver{alerts: alerts, now: time.Now}
}

func (d *Deriver) store(tx *gorm.DB) alertdomain.Repository {
	if tx != nil {
		return d.alerts.WithTx(tx)
	}
	return d.alerts
}

// MedicineAlerts applies the low-stock and expiry rules to the given
// medicine snapshot and returns only the alerts created by this call.
// When tx is non-nil the alerts commit with the enclosing transaction.
func (d *Deriver) MedicineAlerts(ctx context.Context, tx *gorm.DB, m *medicinedomain.Medicine) ([]alertdomain.AlertLog, error) {
	store := d.store(tx)
	var created []alertdomain.AlertLog

	// Low stock: zero is critical, at or below threshold is low. Above
	// threshold nothing happens; open alerts stay open until resolved.
	if m.Quantity <= m.ThresholdAlert {
		alertType, severity, title := alertdomain.TypeLowStock, alertdomain.SeverityHigh, "Low Stock"
		if m.Quantity == 0 {
			alertType, severity, title = alertdomain.TypeStockCritical, alertdomain.SeverityCritical, "Critical Stock"
		}
		rec, isNew, err := store.GetOrCreateOpen(ctx, &alertdomain.AlertLog{
			AlertType:  alertType,
			Severity:   severity,
			Title:      fmt.Sprintf("%s: %s", title, m.Name),
			Message:    fmt.Sprintf("%s has %d units remaining (threshold: %d)", m.Name, m.Quantity, m.ThresholdAlert),
			MedicineID: &m.ID,
		})
		if err != nil {
			return nil, err
		}
		if isNew {
			created = append(created, *rec)
		}
	}

	// Expiry: already past is EXPIRED, inside the warning window is
	// EXPIRY_WARNING, outside the window nothing.
	days := m.DaysUntilExpiry(d.now())
	if days <= ExpiryWarningDays {
		alertType, severity, title := alertdomain.TypeExpiryWarning, alertdomain.SeverityMedium, "Expiry Warning"
		if days < 0 {
			alertType, severity, title = alertdomain.TypeExpired, alertdomain.SeverityCritical, "Expired"
		}
		rec, isNew, err := store.GetOrCreateOpen(ctx, &alertdomain.AlertLog{
			AlertType:  alertType,
			Severity:   severity,
			Title:      fmt.Sprintf("%s: %s", title, m.Name),
			Message:    fmt.Sprintf("%s expires on %s (%d days)", m.Name, m.ExpiryDate.Format("2006-01-02"), days),
			MedicineID: &m.ID,
		})
		if err != nil {
			return nil, err
		}
		if isNew {
			created = append(created, *rec)
		}
	}

	for _, a := range created {
		metrics.AlertsCreated.WithLabelValues(a.AlertType, a.Severity).Inc()
	}
	return created, nil
}

// PrescriptionAlerts applies the urgent and pending-age rules. created
// marks a just-issued prescription; the pending-age rule also fires from
// the periodic re-evaluation job.
func (d *Deriver) PrescriptionAlerts(ctx context.Context, tx *gorm.DB, p *presdomain.Prescription, justCreated bool) ([]alertdomain.AlertLog, error) {
	store := d.store(tx)
	var created []alertdomain.AlertLog

	patient := p.Number
	if p.Patient != nil {
		patient = p.Patient.FullName()
	}

	if justCreated && p.IsUrgent {
		rec, isNew, err := store.GetOrCreateOpen(ctx, &alertdomain.AlertLog{
			AlertType:      alertdomain.TypePrescriptionUrgent,
			Severity:       alertdomain.SeverityHigh,
			Title:          fmt.Sprintf("Urgent Prescription: %s", patient),
			Message:        fmt.Sprintf("Urgent prescription %s created for %s", p.Number, patient),
			PrescriptionID: &p.ID,
			UserID:         &p.PrescribedByID,
		})
		if err != nil {
			return nil, err
		}
		if isNew {
			created = append(created, *rec)
		}
	}

	if p.Status == presdomain.StatusPending && !p.IsUrgent {
		pending := d.now().Sub(p.DateIssued)
		if pending > PendingAlertAge {
			rec, isNew, err := store.GetOrCreateOpen(ctx, &alertdomain.AlertLog{
				AlertType:      alertdomain.TypePrescriptionPending,
				Severity:       alertdomain.SeverityMedium,
				Title:          fmt.Sprintf("Pending Prescription: %s", patient),
				Message:        fmt.Sprintf("Prescription %s has been pending for %d hours", p.Number, int(pending.Hours())),
				PrescriptionID: &p.ID,
				UserID:         &p.PrescribedByID,
			})
			if err != nil {
				return nil, err
			}
			if isNew {
				created = append(created, *rec)
			}
		}
	}

	for _, a := range created {
		metrics.AlertsCreated.WithLabelValues(a.AlertType, a.Severity).Inc()
	}
	return created, nil
}
