package domain

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// Medicine categories
var Categories = []string{
	"ANTIBIOTIC", "ANALGESIC", "ANTIVIRAL", "ANTIFUNGAL", "ANTIPARASITIC",
	"ANTIDEPRESSANT", "ANTIPSYCHOTIC", "ANTIHISTAMINE", "BRONCHODILATOR",
	"CORTICOSTEROID", "DIURETIC", "ANTIHYPERTENSIVE", "ANTIDIABETIC",
	"ANTICOAGULANT", "ANTIPLATELET", "LIPID_LOWERING", "HORMONE",
	"IMMUNOSUPPRESSANT", "VACCINE", "VITAMIN_SUPPLEMENT", "MINERAL",
	"ELECTROLYTE", "GASTROINTESTINAL", "OPHTHALMIC", "OTIC", "TOPICAL",
	"DERMATOLOGICAL", "CONTRACEPTIVE", "UROLOGICAL", "ONCOLOGY",
	"ANESTHETIC", "SEDATIVE", "STIMULANT", "ANTACID", "LAXATIVE",
	"ANTIDIARRHEAL", "ANTIEMETIC", "ANTIULCER", "CARDIAC", "RESPIRATORY",
	"NEUROLOGICAL", "PSYCHIATRIC", "RHEUMATOLOGICAL", "OTHER",
}

// ValidCategory reports whether the category is a known one
func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Medicine represents a tracked inventory item. Quantity is mutated only
// through the stock ledger, never by direct field assignment.
type Medicine struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Name           string         `json:"name" gorm:"not null;index"`
	Description    string         `json:"description"`
	Category       string         `json:"category" gorm:"not null"`
	Quantity       int            `json:"quantity" gorm:"not null;default:0;check:quantity >= 0"`
	Dosage         string         `json:"dosage"`
	ExpiryDate     time.Time      `json:"expiry_date" gorm:"not null"`
	ThresholdAlert int            `json:"threshold_alert" gorm:"not null;default:10"`
	SupplierID     uint           `json:"supplier_id" gorm:"not null;index"`
	Supplier       *Supplier      `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	IsActive       bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Medicine) TableName() string {
	return "medicines"
}

// DaysUntilExpiry returns whole days between today and the expiry date,
// negative once expired.
func (m *Medicine) DaysUntilExpiry(today time.Time) int {
	expiry := time.Date(m.ExpiryDate.Year(), m.ExpiryDate.Month(), m.ExpiryDate.Day(), 0, 0, 0, 0, time.UTC)
	now := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(expiry.Sub(now).Hours() / 24)
}

// AdjustedQuantity validates a signed delta against the current quantity
// and returns the resulting quantity without mutating the medicine.
func (m *Medicine) AdjustedQuantity(delta int) (int, error) {
	if delta == 0 {
		return 0, apperrors.NewValidation("quantity_change", "must be a nonzero amount")
	}
	next := m.Quantity + delta
	if next < 0 {
		return 0, apperrors.NewInsufficientStock(m.ID, m.Name, -delta, m.Quantity)
	}
	return next, nil
}

// Filter narrows medicine listings
type Filter struct {
	Category   string
	Search     string
	ActiveOnly bool
}

// MedicineRepository defines the contract for medicine data access
type MedicineRepository interface {
	Create(ctx context.Context, medicine *Medicine) error
	FindByID(ctx context.Context, id uint) (*Medicine, error)
	FindAll(ctx context.Context, filter Filter, limit, offset int) ([]Medicine, error)
	FindActive(ctx context.Context) ([]Medicine, error)
	Update(ctx context.Context, medicine *Medicine) error
	Delete(ctx context.Context, id uint) error
	LowStock(ctx context.Context) ([]Medicine, error)
	ExpiringWithin(ctx context.Context, days int) ([]Medicine, error)
	Logs(ctx context.Context, medicineID uint, limit, offset int) ([]InventoryLog, error)
}
