// Package users provides database operations for user accounts. It is the
// credential store consulted by the auth service.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail(email)
package users

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tiendatech/storefront/internal/entities"
)

// Repository handles all user database operations. Lookups return a nil
// user (and nil error) when no record matches.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user record.
func (r *Repository) Create(user *entities.User) (*entities.User, error) {
	if err := r.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// UpdatePassword replaces the stored password hash in a single update.
func (r *Repository) UpdatePassword(id uint, passwordHash string) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateName updates the user's display name and returns the fresh record,
// or nil if the user does not exist.
func (r *Repository) UpdateName(id uint, name string) (*entities.User, error) {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(id)
}

// CountByRole returns the number of users holding the given role.
func (r *Repository) CountByRole(role entities.UserRole) (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}
