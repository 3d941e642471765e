package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultProfilePhoto is the placeholder photo assigned at signup and used
// whenever a user has no photo of their own.
const DefaultProfilePhoto = "/uploads/default-profile-placeholder.png"

// User represents a user account
type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never serialize password hash
	Photo        string     `json:"photo"`
	Address      string     `json:"address"`
	Phone        string     `json:"phone"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
