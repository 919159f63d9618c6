package command

import (
	"context"

	"github.com/pharmacore/pharmacy-api/internal/alert/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// UpdatePreferenceCommand represents the command to update a user's alert
// preferences. Nil pointers leave the stored value untouched.
type UpdatePreferenceCommand struct {
	UserID uint

	EmailNotifications    *bool
	PushNotifications     *bool
	TelegramNotifications *bool

	ReceiveLowStockAlerts     *bool
	ReceiveExpiryAlerts       *bool
	ReceivePrescriptionAlerts *bool
	ReceiveSystemAlerts       *bool

	MinSeverityLevel *string
	DailyDigest      *bool
	ImmediateAlerts  *bool
	TelegramChatID   *string
}

// UpdatePreferenceHandler handles preference update command
type UpdatePreferenceHandler struct {
	prefs domain.PreferenceRepository
}

// NewUpdatePreferenceHandler creates a new update preference handler
func NewUpdatePreferenceHandler(prefs domain.PreferenceRepository) *UpdatePreferenceHandler {
	return &UpdatePreferenceHandler{prefs: prefs}
}

// Handle executes the update preference command
func (h *UpdatePreferenceHandler) Handle(ctx context.Context, cmd UpdatePreferenceCommand) (*domain.AlertPreference, error) {
	pref, err := h.prefs.GetOrCreate(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if cmd.EmailNotifications != nil {
		pref.EmailNotifications = *cmd.EmailNotifications
	}
	if cmd.PushNotifications != nil {
		pref.PushNotifications = *cmd.PushNotifications
	}
	if cmd.TelegramNotifications != nil {
		pref.TelegramNotifications = *cmd.TelegramNotifications
	}
	if cmd.ReceiveLowStockAlerts != nil {
		pref.ReceiveLowStockAlerts = *cmd.ReceiveLowStockAlerts
	}
	if cmd.ReceiveExpiryAlerts != nil {
		pref.ReceiveExpiryAlerts = *cmd.ReceiveExpiryAlerts
	}
	if cmd.ReceivePrescriptionAlerts != nil {
		pref.ReceivePrescriptionAlerts = *cmd.ReceivePrescriptionAlerts
	}
	if cmd.ReceiveSystemAlerts != nil {
		pref.ReceiveSystemAlerts = *cmd.ReceiveSystemAlerts
	}
	if cmd.MinSeverityLevel != nil {
		switch *cmd.MinSeverityLevel {
		case domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh, domain.SeverityCritical:
			pref.MinSeverityLevel = *cmd.MinSeverityLevel
		default:
			return nil, apperrors.NewValidation("min_severity_level", "unknown severity %q", *cmd.MinSeverityLevel)
		}
	}
	if cmd.DailyDigest != nil {
		pref.DailyDigest = *cmd.DailyDigest
	}
	if cmd.ImmediateAlerts != nil {
		pref.ImmediateAlerts = *cmd.ImmediateAlerts
	}
	if cmd.TelegramChatID != nil {
		pref.TelegramChatID = *cmd.TelegramChatID
	}

	if err := h.prefs.Save(ctx, pref); err != nil {
		return nil, err
	}

	return pref, nil
}
