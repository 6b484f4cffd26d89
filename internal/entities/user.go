package entities

import (
	"time"

	"gorm.io/gorm"
)

// UserRole is a closed enum. Anything outside ADMIN/USER is rejected at
// validation boundaries rather than stored.
type UserRole string

const (
	UserRoleAdmin UserRole = "ADMIN"
	UserRoleUser  UserRole = "USER"
)

// Valid reports whether the role is one of the known values.
func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleUser
}

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:255" json:"email"`
	Name         string         `gorm:"size:255" json:"name"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         UserRole       `gorm:"size:20;default:USER" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
