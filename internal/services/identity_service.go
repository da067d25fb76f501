package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reisen/shared-calendar-api/internal/constants"
	"github.com/reisen/shared-calendar-api/internal/models"
	"github.com/reisen/shared-calendar-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrDuplicateIdentity    = errors.New("a user with this username and email already exists")
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// IdentityService handles registration and credential verification.
type IdentityService struct {
	userRepo repository.UserRepository
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(userRepo repository.UserRepository) *IdentityService {
	return &IdentityService{
		userRepo: userRepo,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username string
	Password string
	Email    *string
}

// Register creates a new user. The (username, email) pair must be free;
// either field alone may collide with an existing user.
func (s *IdentityService) Register(input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if input.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, constants.MinPasswordLength)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		Email:        input.Email,
	}

	if err := s.userRepo.CreateIfIdentityFree(user); err != nil {
		if errors.Is(err, repository.ErrIdentityTaken) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies credentials and returns the matching user. Unknown
// usernames and wrong passwords produce the same error so callers cannot
// enumerate accounts.
func (s *IdentityService) Authenticate(username, password string) (*models.User, error) {
	users, err := s.userRepo.FindAllByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	// Usernames are only unique per (username, email) pair, so several
	// accounts may share one; the password picks the account.
	for i := range users {
		if bcrypt.CompareHashAndPassword([]byte(users[i].PasswordHash), []byte(password)) == nil {
			return &users[i], nil
		}
	}

	return nil, ErrAuthenticationFailed
}

// FindByID retrieves a user by ID. A lookup miss returns nil without error.
func (s *IdentityService) FindByID(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
