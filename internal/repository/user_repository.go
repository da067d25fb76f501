package repository

import (
	"errors"
	"fmt"

	"github.com/reisen/shared-calendar-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrIdentityTaken is returned when another user already holds the same
	// (username, email) pair.
	ErrIdentityTaken = errors.New("user repository: identity pair already taken")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// CreateIfIdentityFree creates the user inside a transaction that first
// verifies the (username, email) pair is free. The pair check runs in Go
// rather than as a unique index because SQL treats two NULL emails as
// distinct, which would let duplicate (username, NULL) pairs through.
func (r *GormUserRepository) CreateIfIdentityFree(user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing []models.User
		if err := tx.Where("username = ?", user.Username).Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to check identity pair: %w", err)
		}

		for _, other := range existing {
			if sameEmail(other.Email, user.Email) {
				return ErrIdentityTaken
			}
		}

		return tx.Create(user).Error
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAllByUsername returns every user with the given username
func (r *GormUserRepository) FindAllByUsername(username string) ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("username = ?", username).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func sameEmail(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
