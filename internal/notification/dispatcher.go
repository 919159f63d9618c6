// Package notification fans alerts out to their subscribers. Dispatch is
// always post-commit and best-effort: a failed delivery is logged and
// counted, never returned to the operation that raised the alert.
package notification

import (
	"context"
	"errors"

	"gorm.io/gorm"

	alertdomain "github.com/pharmacore/pharmacy-api/internal/alert/domain"
	"github.com/pharmacore/pharmacy-api/internal/notification/telegram"
	"github.com/pharmacore/pharmacy-api/internal/observability/metrics"
	"github.com/pharmacore/pharmacy-api/kafka"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
	"github.com/pharmacore/pharmacy-api/pkg/logger"
)

// Dispatcher routes created alerts to telegram and kafka
type Dispatcher struct {
	client    *telegram.Client
	prefs     alertdomain.PreferenceRepository
	publisher *kafka.Publisher
}

// NewDispatcher creates a dispatcher. publisher may be nil.
func NewDispatcher(client *telegram.Client, prefs alertdomain.PreferenceRepository, publisher *kafka.Publisher) *Dispatcher {
	return &Dispatcher{client: client, prefs: prefs, publisher: publisher}
}

// Dispatch delivers one alert and reports whether a telegram message went
// out. The kafka event publishes regardless of preference suppression.
func (d *Dispatcher) Dispatch(ctx context.Context, alert *alertdomain.AlertLog) bool {
	d.publishEvent(ctx, alert)

	if !d.client.Configured() {
		return false
	}

	chatID := d.client.ChannelChatID()
	if alert.UserID != nil {
		pref, err := d.prefs.FindByUserID(ctx, *alert.UserID)
		switch {
		case err != nil && !isNotFound(err):
			logger.Logger.Warn().Err(err).Uint("user_id", *alert.UserID).
				Msg("Failed to load alert preference, delivering to channel")
		case err == nil:
			if suppressed(pref, alert) {
				return false
			}
			if pref.TelegramChatID != "" {
				chatID = pref.TelegramChatID
			}
		}
		// Missing preference means deliver with defaults
	}

	if err := d.client.SendAlert(ctx, chatID, alert); err != nil {
		metrics.NotificationsFailed.Inc()
		logger.Logger.Warn().Err(err).
			Uint("alert_id", alert.ID).
			Str("alert_type", alert.AlertType).
			Msg("Failed to send telegram notification")
		return false
	}

	metrics.NotificationsSent.Inc()
	return true
}

// DispatchAll fans out a batch of alerts in the background. Callers invoke
// it after their transaction committed; it must never block them.
func (d *Dispatcher) DispatchAll(ctx context.Context, alerts []alertdomain.AlertLog) {
	if len(alerts) == 0 {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		for i := range alerts {
			d.Dispatch(detached, &alerts[i])
		}
	}()
}

func (d *Dispatcher) publishEvent(ctx context.Context, alert *alertdomain.AlertLog) {
	if d.publisher == nil {
		return
	}
	event := kafka.AlertCreatedEvent{
		AlertID:        alert.ID,
		AlertType:      alert.AlertType,
		Severity:       alert.Severity,
		Title:          alert.Title,
		MedicineID:     alert.MedicineID,
		PrescriptionID: alert.PrescriptionID,
	}
	if err := d.publisher.PublishAlertCreated(ctx, event); err != nil {
		logger.Logger.Warn().Err(err).Uint("alert_id", alert.ID).
			Msg("Failed to publish alert created event")
	}
}

// suppressed applies the user's preference to one alert
func suppressed(pref *alertdomain.AlertPreference, alert *alertdomain.AlertLog) bool {
	if !pref.TelegramNotifications || !pref.PushNotifications || !pref.ImmediateAlerts {
		return true
	}
	if alertdomain.SeverityRank(alert.Severity) < alertdomain.SeverityRank(pref.MinSeverityLevel) {
		return true
	}
	switch alert.AlertType {
	case alertdomain.TypeLowStock, alertdomain.TypeStockCritical:
		return !pref.ReceiveLowStockAlerts
	case alertdomain.TypeExpiryWarning, alertdomain.TypeExpired:
		return !pref.ReceiveExpiryAlerts
	case alertdomain.TypePrescriptionUrgent, alertdomain.TypePrescriptionPending:
		return !pref.ReceivePrescriptionAlerts
	case alertdomain.TypeSystem:
		return !pref.ReceiveSystemAlerts
	}
	return false
}

func isNotFound(err error) bool {
	var nf *apperrors.NotFoundError
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.As(err, &nf)
}
