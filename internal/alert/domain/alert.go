package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Alert types
const (
	TypeLowStock            = "LOW_STOCK"
	TypeStockCritical       = "STOCK_CRITICAL"
	TypeExpiryWarning       = "EXPIRY_WARNING"
	TypeExpired             = "EXPIRED"
	TypePrescriptionUrgent  = "PRESCRIPTION_URGENT"
	TypePrescriptionPending = "PRESCRIPTION_PENDING"
	TypeSystem              = "SYSTEM"
)

// Severity levels
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// SeverityRank orders severities so preference floors can be compared
func SeverityRank(severity string) int {
	switch severity {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}

// AlertLog represents a derived, deduplicated alert record. Related
// entities are referenced by id only; resolution is always explicit.
type AlertLog struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	AlertType string `json:"alert_type" gorm:"not null;index:idx_alert_type_resolved"`
	Severity  string `json:"severity" gorm:"not null;default:'MEDIUM';index:idx_alert_severity_created"`
	Title     string `json:"title" gorm:"not null"`
	Message   string `json:"message" gorm:"not null"`

	MedicineID     *uint `json:"medicine_id,omitempty" gorm:"index:idx_alert_medicine_resolved"`
	PrescriptionID *uint `json:"prescription_id,omitempty" gorm:"index"`
	UserID         *uint `json:"user_id,omitempty" gorm:"index"`

	IsResolved    bool       `json:"is_resolved" gorm:"not null;default:false;index:idx_alert_type_resolved;index:idx_alert_medicine_resolved"`
	ResolvedByID  *uint      `json:"resolved_by_id,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	ResolvedNotes string     `json:"resolved_notes,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"index:idx_alert_severity_created"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (AlertLog) TableName() string {
	return "alert_logs"
}

// Filter narrows alert listings
type Filter struct {
	AlertType      string
	Severity       string
	Resolved       *bool
	MedicineID     uint
	PrescriptionID uint
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
}

// Stats aggregates open/closed alert counts
type Stats struct {
	Total      int64            `json:"total"`
	Unresolved int64            `json:"unresolved"`
	Resolved   int64            `json:"resolved"`
	BySeverity map[string]int64 `json:"by_severity"`
	ByType     map[string]int64 `json:"by_type"`
}

// Repository defines the contract for alert data access. WithTx rebinds
// the repository to a caller-managed transaction so alert writes commit
// with the mutation that triggered them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, alert *AlertLog) error
	// GetOrCreateOpen deduplicates on (medicine|prescription, alert_type,
	// unresolved): when an open alert for the same key exists it is
	// returned with created=false and nothing is inserted.
	GetOrCreateOpen(ctx context.Context, alert *AlertLog) (*AlertLog, bool, error)
	FindByID(ctx context.Context, id uint) (*AlertLog, error)
	FindAll(ctx context.Context, filter Filter, limit, offset int) ([]AlertLog, error)
	Unresolved(ctx context.Context) ([]AlertLog, error)
	UnresolvedSince(ctx context.Context, since time.Time) ([]AlertLog, error)
	Critical(ctx context.Context) ([]AlertLog, error)
	Update(ctx context.Context, alert *AlertLog) error
	Stats(ctx context.Context) (*Stats, error)
}
