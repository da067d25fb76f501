package repository

import (
	"errors"
	"fmt"

	"github.com/reisen/shared-calendar-api/internal/models"
	"gorm.io/gorm"
)

// GormEventRepository is a GORM implementation of EventRepository
type GormEventRepository struct {
	db *gorm.DB
}

var (
	// ErrCalendarMissing is returned when the event's calendar no longer
	// exists at write time.
	ErrCalendarMissing = errors.New("event repository: calendar not found")
	// ErrNotCalendarOwner is returned when the writer does not own the
	// event's calendar.
	ErrNotCalendarOwner = errors.New("event repository: requester does not own the calendar")
)

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &GormEventRepository{db: db}
}

// CreateOwned writes the event in the same transaction as the existence and
// ownership checks, so the calendar cannot disappear between check and write.
func (r *GormEventRepository) CreateOwned(event *models.Event, ownerID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := guardCalendarOwner(tx, event.CalendarID, ownerID); err != nil {
			return err
		}
		return tx.Create(event).Error
	})
}

// UpdateOwned saves the event under the same transactional guard as CreateOwned.
func (r *GormEventRepository) UpdateOwned(event *models.Event, ownerID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := guardCalendarOwner(tx, event.CalendarID, ownerID); err != nil {
			return err
		}
		return tx.Save(event).Error
	})
}

// Delete removes an event. Removal of an absent row is a no-op.
func (r *GormEventRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Event{}, id).Error
}

// FindByID finds an event by ID
func (r *GormEventRepository) FindByID(id uint64) (*models.Event, error) {
	var event models.Event
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// ListByCalendar returns the calendar's events in listing order. Recurring
// events sort before dated ones sharing a (month, day) key; the event ID is
// the stable tie-break.
func (r *GormEventRepository) ListByCalendar(calendarID uint64, includePrivate bool) ([]models.Event, error) {
	query := r.db.Where("calendar_id = ?", calendarID)
	if !includePrivate {
		query = query.Where("private = ?", false)
	}

	var events []models.Event
	err := query.
		Order("month ASC, day ASC").
		Order("CASE WHEN year IS NULL THEN 0 ELSE 1 END, year ASC").
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func guardCalendarOwner(tx *gorm.DB, calendarID, ownerID uint64) error {
	var calendar models.Calendar
	if err := tx.First(&calendar, calendarID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCalendarMissing
		}
		return fmt.Errorf("failed to load calendar: %w", err)
	}
	if calendar.UserID != ownerID {
		return ErrNotCalendarOwner
	}
	return nil
}
