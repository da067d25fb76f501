package repository

import (
	"errors"
	"fmt"

	"github.com/reisen/shared-calendar-api/internal/models"
	"gorm.io/gorm"
)

// GormCalendarRepository is a GORM implementation of CalendarRepository
type GormCalendarRepository struct {
	db *gorm.DB
}

var (
	// ErrOwnerHasCalendar is returned when the owner already has a calendar.
	ErrOwnerHasCalendar = errors.New("calendar repository: owner already has a calendar")
)

// NewCalendarRepository creates a new CalendarRepository
func NewCalendarRepository(db *gorm.DB) CalendarRepository {
	return &GormCalendarRepository{db: db}
}

// CreateForOwner creates the calendar inside a transaction that first checks
// the one-calendar-per-user invariant. The unique index on user_id backstops
// the check; a race loser surfaces as the same sentinel.
func (r *GormCalendarRepository) CreateForOwner(calendar *models.Calendar) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Calendar{}).
			Where("user_id = ?", calendar.UserID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check existing calendar: %w", err)
		}
		if count > 0 {
			return ErrOwnerHasCalendar
		}

		return tx.Create(calendar).Error
	})
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrOwnerHasCalendar
	}
	return err
}

// FindByID finds a calendar by ID
func (r *GormCalendarRepository) FindByID(id uint64) (*models.Calendar, error) {
	var calendar models.Calendar
	if err := r.db.First(&calendar, id).Error; err != nil {
		return nil, err
	}
	return &calendar, nil
}

// FindByUserID finds the calendar owned by the given user
func (r *GormCalendarRepository) FindByUserID(userID uint64) (*models.Calendar, error) {
	var calendar models.Calendar
	if err := r.db.Where("user_id = ?", userID).First(&calendar).Error; err != nil {
		return nil, err
	}
	return &calendar, nil
}

// FindByShareURL finds a calendar by its share token
func (r *GormCalendarRepository) FindByShareURL(token string) (*models.Calendar, error) {
	var calendar models.Calendar
	if err := r.db.Where("share_url = ?", token).First(&calendar).Error; err != nil {
		return nil, err
	}
	return &calendar, nil
}

// UpdateShareURL replaces the share token in one update guarded by the
// primary key, so concurrent regenerations serialize on the row.
func (r *GormCalendarRepository) UpdateShareURL(calendarID uint64, token *string) error {
	return r.db.Model(&models.Calendar{}).
		Where("id = ?", calendarID).
		Update("share_url", token).Error
}

// DeleteCascade removes the calendar's events before the calendar itself, in
// one transaction. Events must never outlive their calendar.
func (r *GormCalendarRepository) DeleteCascade(calendarID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("calendar_id = ?", calendarID).Delete(&models.Event{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Calendar{}, calendarID).Error
	})
}
