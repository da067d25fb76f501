package models

import (
	"time"
)

// Event is a calendar entry. A nil Year marks a recurring annual event (same
// month/day every year); a non-nil Year marks a one-time dated event.
type Event struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	CalendarID uint64    `gorm:"not null;index" json:"calendar_id"`
	Title      string    `gorm:"type:varchar(255);not null" json:"title"`
	Month      int       `gorm:"not null" json:"month"`
	Day        int       `gorm:"not null" json:"day"`
	Year       *int      `json:"year,omitempty"`
	Notes      *string   `gorm:"type:text" json:"notes,omitempty"`
	Private    bool      `gorm:"not null;default:false" json:"private"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Calendar Calendar `gorm:"foreignKey:CalendarID" json:"calendar,omitempty"`
}

// Recurring reports whether the event repeats annually.
func (e *Event) Recurring() bool {
	return e.Year == nil
}
