package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account. Every other entity hangs off a user; the store
// enforces that tank-scoped reads and writes stay inside the owner's data.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
