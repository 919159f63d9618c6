package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Role types
const (
	RoleDoctor     = "DOCTOR"
	RolePharmacist = "PHARMACIST"
	RoleAdmin      = "ADMIN"
)

// ValidRole reports whether the role is a known one
func ValidRole(role string) bool {
	return role == RoleDoctor || role == RolePharmacist || role == RoleAdmin
}

// User represents a staff account (domain model)
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Username  string         `json:"username" gorm:"uniqueIndex;not null"`
	Email     string         `json:"email" gorm:"uniqueIndex;not null"`
	Password  string         `json:"-" gorm:"not null"` // Never expose password in JSON
	FullName  string         `json:"full_name" gorm:"not null"`
	Role      string         `json:"role" gorm:"not null"`
	Phone     string         `json:"phone"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"` // Soft delete
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// IsAdmin checks if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanFulfill checks if user may fulfill prescriptions
func (u *User) CanFulfill() bool {
	return u.Role == RolePharmacist || u.Role == RoleAdmin
}

// CanPrescribe checks if user may issue prescriptions
func (u *User) CanPrescribe() bool {
	return u.Role == RoleDoctor
}

// UserRepository defines the contract for user data access
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, limit, offset int) ([]User, error)
	FindByRole(ctx context.Context, role string, limit, offset int) ([]User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}
