package model

import (
	"time"

	"gorm.io/gorm"
)

// Dealer represents a business unit (an academy branch) owning its own
// students, trainers, groups and accounting data.
// A dealer with a non-nil ParentID is a sub-dealer and runs under a
// restricted capability ceiling.
type Dealer struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100)"`
	Slug      string         `json:"slug" gorm:"type:varchar(100);uniqueIndex"`
	Active    bool           `json:"active" gorm:"default:true"`
	ParentID  *uint          `json:"parent_id,omitempty" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Parent *Dealer `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
}

// IsSub reports whether the dealer runs under a parent dealer.
func (d *Dealer) IsSub() bool {
	return d.ParentID != nil
}
