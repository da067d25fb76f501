package models

import (
	"time"
)

// Calendar belongs to exactly one user. ShareURL is nil while the calendar is
// private; a non-nil value is the opaque token granting anonymous read access.
type Calendar struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"not null;uniqueIndex" json:"user_id"`
	ShareURL  *string   `gorm:"type:varchar(64);uniqueIndex" json:"share_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner  User    `gorm:"foreignKey:UserID" json:"owner,omitempty"`
	Events []Event `gorm:"foreignKey:CalendarID" json:"events,omitempty"`
}
