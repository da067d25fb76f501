package services

import (
	"errors"
	"fmt"

	"github.com/reisen/shared-calendar-api/internal/constants"
	"github.com/reisen/shared-calendar-api/internal/models"
	"github.com/reisen/shared-calendar-api/internal/repository"
	"github.com/reisen/shared-calendar-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrOwnerNotFound         = errors.New("owner not found")
	ErrCalendarAlreadyExists = errors.New("user already has a calendar")
	ErrCalendarNotFound      = errors.New("calendar not found")
	ErrNotOwner              = errors.New("only the calendar owner can perform this action")
	ErrShareTokenGeneration  = errors.New("failed to generate share token")
)

// CalendarService provides business logic for calendar and share-link
// operations.
type CalendarService struct {
	calendarRepo repository.CalendarRepository
	userRepo     repository.UserRepository
}

// NewCalendarService creates a new CalendarService.
func NewCalendarService(calendarRepo repository.CalendarRepository, userRepo repository.UserRepository) *CalendarService {
	return &CalendarService{
		calendarRepo: calendarRepo,
		userRepo:     userRepo,
	}
}

// CreateCalendar creates the single calendar owned by ownerID.
func (s *CalendarService) CreateCalendar(ownerID uint64) (*models.Calendar, error) {
	if _, err := s.userRepo.FindByID(ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to find owner: %w", err)
	}

	calendar := &models.Calendar{
		UserID: ownerID,
	}

	if err := s.calendarRepo.CreateForOwner(calendar); err != nil {
		if errors.Is(err, repository.ErrOwnerHasCalendar) {
			return nil, ErrCalendarAlreadyExists
		}
		return nil, fmt.Errorf("failed to create calendar: %w", err)
	}

	return calendar, nil
}

// GetCalendarForUser returns the calendar owned by userID.
func (s *CalendarService) GetCalendarForUser(userID uint64) (*models.Calendar, error) {
	calendar, err := s.calendarRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCalendarNotFound
		}
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}
	return calendar, nil
}

// GenerateShareLink rotates the calendar's share token. Any previously issued
// link stops resolving the moment the new token is written.
func (s *CalendarService) GenerateShareLink(calendarID, requesterID uint64) (string, error) {
	calendar, err := s.calendarRepo.FindByID(calendarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrCalendarNotFound
		}
		return "", fmt.Errorf("failed to find calendar: %w", err)
	}

	if calendar.UserID != requesterID {
		return "", ErrNotOwner
	}

	for attempt := 0; attempt < constants.ShareTokenMaxAttempts; attempt++ {
		token, err := utils.GenerateShareToken()
		if err != nil {
			return "", ErrShareTokenGeneration
		}

		// Tokens must be unique across every calendar; collisions are
		// vanishingly rare at this entropy but the index would reject one.
		if _, err := s.calendarRepo.FindByShareURL(token); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("failed to check token uniqueness: %w", err)
		}

		if err := s.calendarRepo.UpdateShareURL(calendarID, &token); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return "", fmt.Errorf("failed to store share token: %w", err)
		}

		return token, nil
	}

	return "", ErrShareTokenGeneration
}

// RevokeShareLink clears the calendar's share token. Revoking an already
// private calendar is a no-op.
func (s *CalendarService) RevokeShareLink(calendarID, requesterID uint64) error {
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

	if err := s.calendarRepo.UpdateShareURL(calendarID, nil); err != nil {
		return fmt.Errorf("failed to revoke share token: %w", err)
	}

	return nil
}

// DeleteCalendar removes the calendar and every event on it.
func (s *CalendarService) DeleteCalendar(calendarID, requesterID uint64) error {
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

	if err := s.calendarRepo.DeleteCascade(calendarID); err != nil {
		return fmt.Errorf("failed to delete calendar: %w", err)
	}

	return nil
}

// ResolveByShareToken returns the calendar behind a share token, or nil when
// the token is unknown or has been revoked.
func (s *CalendarService) ResolveByShareToken(token string) (*models.Calendar, error) {
	if token == "" {
		return nil, nil
	}

	calendar, err := s.calendarRepo.FindByShareURL(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve share token: %w", err)
	}

	return calendar, nil
}
