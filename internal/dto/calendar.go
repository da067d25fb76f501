package dto

import (
	"github.com/reisen/shared-calendar-api/internal/models"
)

// CalendarDTO represents a calendar in API responses. The share token is only
// included for the owner; anonymous readers already hold it.
type CalendarDTO struct {
	ID       uint64  `json:"id"`
	UserID   uint64  `json:"user_id"`
	ShareURL *string `json:"share_url,omitempty"`
	Shared   bool    `json:"shared"`
}

// EventDTO represents an event in API responses
type EventDTO struct {
	ID        uint64  `json:"id"`
	Title     string  `json:"title"`
	Month     int     `json:"month"`
	Day       int     `json:"day"`
	Year      *int    `json:"year,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	Private   bool    `json:"private"`
	Recurring bool    `json:"recurring"`
}

// SharedCalendarDTO is the anonymous view of a shared calendar: public events
// only, no owner identity beyond the calendar ID.
type SharedCalendarDTO struct {
	CalendarID uint64     `json:"calendar_id"`
	Events     []EventDTO `json:"events"`
}

// ToCalendarDTO converts a Calendar model to CalendarDTO
func ToCalendarDTO(calendar models.Calendar, includeShareURL bool) CalendarDTO {
	dto := CalendarDTO{
		ID:     calendar.ID,
		UserID: calendar.UserID,
		Shared: calendar.ShareURL != nil,
	}
	if includeShareURL {
		dto.ShareURL = calendar.ShareURL
	}
	return dto
}

// ToEventDTO converts an Event model to EventDTO
func ToEventDTO(event models.Event) EventDTO {
	return EventDTO{
		ID:        event.ID,
		Title:     event.Title,
		Month:     event.Month,
		Day:       event.Day,
		Year:      event.Year,
		Notes:     event.Notes,
		Private:   event.Private,
		Recurring: event.Recurring(),
	}
}

// ToEventDTOs converts a slice of events preserving order
func ToEventDTOs(events []models.Event) []EventDTO {
	dtos := make([]EventDTO, len(events))
	for i, event := range events {
		dtos[i] = ToEventDTO(event)
	}
	return dtos
}
