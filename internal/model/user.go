package model

import (
	"time"

	"gorm.io/gorm"
)

// Role is the closed set of account roles.
type Role string

const (
	// RoleSuperAdmin is the platform operator; not bound to any dealer.
	RoleSuperAdmin Role = "superadmin"
	// RoleDealerAdmin administers a single dealer (or sub-dealer).
	RoleDealerAdmin Role = "dealer_admin"
	// RoleTrainer is a coaching account inside a dealer.
	RoleTrainer Role = "trainer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleDealerAdmin, RoleTrainer:
		return true
	}
	return false
}

// User represents an account stored in the database.
// Accounts are deactivated or soft-deleted, never physically removed,
// so financial and attendance records keep their references.
type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Email        string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	PasswordHash string         `json:"-" gorm:"type:varchar(255)"`
	Name         string         `json:"name" gorm:"type:varchar(100)"`
	Phone        string         `json:"phone,omitempty" gorm:"type:varchar(30)"`
	Role         Role           `json:"role" gorm:"type:varchar(30);not null"`
	Active       bool           `json:"active" gorm:"default:true"`
	DealerID     *uint          `json:"dealer_id,omitempty" gorm:"index"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Dealer *Dealer `json:"dealer,omitempty" gorm:"foreignKey:DealerID"`
}
