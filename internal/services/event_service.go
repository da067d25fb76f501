package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reisen/shared-calendar-api/internal/models"
	"github.com/reisen/shared-calendar-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidDate   = errors.New("month and day do not form a valid date")
	ErrAccessDenied  = errors.New("access denied")
)

// EventService provides business logic for event operations, including the
// visibility rules for non-owner readers.
type EventService struct {
	eventRepo    repository.EventRepository
	calendarRepo repository.CalendarRepository
}

// NewEventService creates a new EventService.
func NewEventService(eventRepo repository.EventRepository, calendarRepo repository.CalendarRepository) *EventService {
	return &EventService{
		eventRepo:    eventRepo,
		calendarRepo: calendarRepo,
	}
}

// CreateEventInput represents parameters to create a new event.
type CreateEventInput struct {
	CalendarID  uint64
	RequesterID uint64
	Title       string
	Month       int
	Day         int
	Year        *int
	Notes       *string
	Private     bool
}

// CreateEvent adds an event to the requester's calendar. A nil Year makes the
// event recur annually.
func (s *EventService) CreateEvent(input CreateEventInput) (*models.Event, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if err := validateDate(input.Month, input.Day, input.Year); err != nil {
		return nil, err
	}

	calendar, err := s.calendarRepo.FindByID(input.CalendarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCalendarNotFound
		}
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}
	if calendar.UserID != input.RequesterID {
		return nil, ErrNotOwner
	}

	event := &models.Event{
		CalendarID: input.CalendarID,
		Title:      strings.TrimSpace(input.Title),
		Month:      input.Month,
		Day:        input.Day,
		Year:       input.Year,
		Notes:      input.Notes,
		Private:    input.Private,
	}

	if err := s.eventRepo.CreateOwned(event, input.RequesterID); err != nil {
		return nil, translateEventRepoError(err)
	}

	return event, nil
}

// EventPatch holds partial updates for an event. Nil fields are left
// untouched; ClearYear and ClearNotes reset the optional columns.
type EventPatch struct {
	Title      *string
	Month      *int
	Day        *int
	Year       *int
	ClearYear  bool
	Notes      *string
	ClearNotes bool
	Private    *bool
}

// UpdateEvent applies a partial update to an event owned by the requester.
// The patched date is re-validated as a whole.
func (s *EventService) UpdateEvent(eventID, requesterID uint64, patch EventPatch) (*models.Event, error) {
	event, err := s.eventRepo.FindByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}

	if err := s.ensureOwner(event.CalendarID, requesterID); err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		event.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Month != nil {
		event.Month = *patch.Month
	}
	if patch.Day != nil {
		event.Day = *patch.Day
	}
	if patch.ClearYear {
		event.Year = nil
	} else if patch.Year != nil {
		event.Year = patch.Year
	}
	if patch.ClearNotes {
		event.Notes = nil
	} else if patch.Notes != nil {
		event.Notes = patch.Notes
	}
	if patch.Private != nil {
		event.Private = *patch.Private
	}

	if err := validateDate(event.Month, event.Day, event.Year); err != nil {
		return nil, err
	}

	if err := s.eventRepo.UpdateOwned(event, requesterID); err != nil {
		return nil, translateEventRepoError(err)
	}

	return event, nil
}

// DeleteEvent removes an event. Deleting an event that is already gone
// succeeds, so retries are safe.
func (s *EventService) DeleteEvent(eventID, requesterID uint64) error {
	event, err := s.eventRepo.FindByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find event: %w", err)
	}

	if err := s.ensureOwner(event.CalendarID, requesterID); err != nil {
		return err
	}

	if err := s.eventRepo.Delete(eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return nil
}

// Viewer identifies who is asking to read a calendar.
type Viewer struct {
	userID uint64
	token  string
	kind   viewerKind
}

type viewerKind int

const (
	viewerAnonymous viewerKind = iota
	viewerOwner
	viewerShareToken
)

// OwnerViewer is an authenticated reader claiming to own the calendar.
func OwnerViewer(userID uint64) Viewer {
	return Viewer{kind: viewerOwner, userID: userID}
}

// ShareTokenViewer is an anonymous reader presenting a share token.
func ShareTokenViewer(token string) Viewer {
	return Viewer{kind: viewerShareToken, token: token}
}

// AnonymousViewer is a reader with no credentials at all.
func AnonymousViewer() Viewer {
	return Viewer{kind: viewerAnonymous}
}

// ListVisibleEvents returns the calendar's events visible to the viewer, in
// listing order. Owners see everything; share-token readers see only public
// events and only while their token matches the calendar.
func (s *EventService) ListVisibleEvents(calendarID uint64, viewer Viewer) ([]models.Event, error) {
	calendar, err := s.calendarRepo.FindByID(calendarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCalendarNotFound
		}
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	switch viewer.kind {
	case viewerOwner:
		if calendar.UserID != viewer.userID {
			return nil, ErrAccessDenied
		}
		return s.eventRepo.ListByCalendar(calendarID, true)

	case viewerShareToken:
		if viewer.token == "" || calendar.ShareURL == nil || *calendar.ShareURL != viewer.token {
			return nil, ErrAccessDenied
		}
		return s.eventRepo.ListByCalendar(calendarID, false)

	default:
		return nil, ErrAccessDenied
	}
}

// ensureOwner verifies that the requester owns the calendar.
func (s *EventService) ensureOwner(calendarID, requesterID uint64) error {
	calendar, err := s.calendarRepo.FindByID(calendarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCalendarNotFound
		}
		return fmt.Errorf("failed to find calendar: %w", err)
	}
	if calendar.UserID != requesterID {
		return ErrNotOwner
	}
	return nil
}

func translateEventRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrCalendarMissing):
		return ErrCalendarNotFound
	case errors.Is(err, repository.ErrNotCalendarOwner):
		return ErrNotOwner
	default:
		return fmt.Errorf("failed to write event: %w", err)
	}
}

// validateDate checks that month and day form a real calendar date. Without a
// year the check is leap-inclusive, so Feb 29 passes; with a year, Feb 29
// requires an actual leap year.
func validateDate(month, day int, year *int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}
	if day < 1 || day > daysInMonth(month, year) {
		return fmt.Errorf("%w: month %d day %d", ErrInvalidDate, month, day)
	}
	return nil
}

func daysInMonth(month int, year *int) int {
	switch month {
	case 4, 6, 9, 11:
		return 30
	case 2:
		if year == nil || isLeapYear(*year) {
			return 29
		}
		return 28
	default:
		return 31
	}
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
