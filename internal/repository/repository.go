package repository

import (
	"github.com/reisen/shared-calendar-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// CreateIfIdentityFree creates a user after verifying that no existing
	// user carries the same (username, email) pair, atomically.
	CreateIfIdentityFree(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindAllByUsername returns every user with the given username. Usernames
	// are only unique together with the email, so this can return several rows.
	FindAllByUsername(username string) ([]models.User, error)
}

// CalendarRepository defines the interface for calendar data access
type CalendarRepository interface {
	// CreateForOwner creates a calendar after verifying the owner does not
	// already have one, atomically.
	CreateForOwner(calendar *models.Calendar) error

	// FindByID finds a calendar by ID
	FindByID(id uint64) (*models.Calendar, error)

	// FindByUserID finds the calendar owned by the given user
	FindByUserID(userID uint64) (*models.Calendar, error)

	// FindByShareURL finds a calendar by its share token
	FindByShareURL(token string) (*models.Calendar, error)

	// UpdateShareURL replaces the calendar's share token in a single update
	// guarded by the primary key. A nil token revokes the link.
	UpdateShareURL(calendarID uint64, token *string) error

	// DeleteCascade removes the calendar's events and then the calendar
	// itself within one transaction.
	DeleteCascade(calendarID uint64) error
}

// EventRepository defines the interface for event data access
type EventRepository interface {
	// CreateOwned creates an event after re-verifying, in the same
	// transaction, that the calendar exists and belongs to ownerID.
	CreateOwned(event *models.Event, ownerID uint64) error

	// UpdateOwned saves an event after re-verifying calendar ownership in the
	// same transaction.
	UpdateOwned(event *models.Event, ownerID uint64) error

	// Delete removes an event. Deleting a missing event is not an error.
	Delete(id uint64) error

	// FindByID finds an event by ID
	FindByID(id uint64) (*models.Event, error)

	// ListByCalendar returns a calendar's events in listing order: month, day,
	// recurring before dated, year ascending, then event ID as the stable
	// tie-break. Private events are filtered out unless includePrivate is set.
	ListByCalendar(calendarID uint64, includePrivate bool) ([]models.Event, error)
}
