package domain

import (
	"context"
	"time"
)

// Supplier represents a medicine supplier
type Supplier struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"not null;index"`
	ContactPerson string    `json:"contact_person"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Supplier) TableName() string {
	return "suppliers"
}

// SupplierRepository defines the contract for supplier data access
type SupplierRepository interface {
	Create(ctx context.Context, supplier *Supplier) error
	FindByID(ctx context.Context, id uint) (*Supplier, error)
	FindAll(ctx context.Context, limit, offset int) ([]Supplier, error)
	Update(ctx context.Context, supplier *Supplier) error
	Delete(ctx context.Context, id uint) error
}
