package domain

import (
	"context"
	"time"
)

// AlertPreference holds per-user notification settings. One row per user;
// a missing row means "deliver everything".
type AlertPreference struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`

	EmailNotifications    bool `json:"email_notifications" gorm:"not null;default:true"`
	PushNotifications     bool `json:"push_notifications" gorm:"not null;default:true"`
	TelegramNotifications bool `json:"telegram_notifications" gorm:"not null;default:true"`

	ReceiveLowStockAlerts     bool `json:"receive_low_stock_alerts" gorm:"not null;default:true"`
	ReceiveExpiryAlerts       bool `json:"receive_expiry_alerts" gorm:"not null;default:true"`
	ReceivePrescriptionAlerts bool `json:"receive_prescription_alerts" gorm:"not null;default:true"`
	ReceiveSystemAlerts       bool `json:"receive_system_alerts" gorm:"not null;default:true"`

	MinSeverityLevel string `json:"min_severity_level" gorm:"not null;default:'MEDIUM'"`

	DailyDigest     bool   `json:"daily_digest" gorm:"not null;default:true"`
	ImmediateAlerts bool   `json:"immediate_alerts" gorm:"not null;default:true"`
	TelegramChatID  string `json:"telegram_chat_id"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (AlertPreference) TableName() string {
	return "alert_preferences"
}

// DefaultPreference returns the deliver-everything default for a user
func DefaultPreference(userID uint) *AlertPreference {
	return &AlertPreference{
		UserID:                    userID,
		EmailNotifications:        true,
		PushNotifications:         true,
		TelegramNotifications:     true,
		ReceiveLowStockAlerts:     true,
		ReceiveExpiryAlerts:       true,
		ReceivePrescriptionAlerts: true,
		ReceiveSystemAlerts:       true,
		MinSeverityLevel:          SeverityMedium,
		DailyDigest:               true,
		ImmediateAlerts:           true,
	}
}

// PreferenceRepository defines the contract for preference data access
type PreferenceRepository interface {
	FindByUserID(ctx context.Context, userID uint) (*AlertPreference, error)
	GetOrCreate(ctx context.Context, userID uint) (*AlertPreference, error)
	Save(ctx context.Context, pref *AlertPreference) error
}
