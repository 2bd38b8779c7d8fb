package model

import (
	"time"

	"gorm.io/gorm"
)

// PermissionGrant is an explicit (user, capability) row.
// A user with zero grant rows falls back to their role's default
// capability set; one or more rows fully replace the defaults.
type PermissionGrant struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	UserID     uint           `json:"user_id" gorm:"index;not null"`
	Capability string         `json:"capability" gorm:"type:varchar(60);not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
