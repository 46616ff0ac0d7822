package user

import (
	"time"

	"github.com/uzdenov777/shareit/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.NotFound("user not found")
	ErrEmailAlreadyUsed   = apperror.Conflict("email already used")
	ErrInvalidCredentials = apperror.Unauthorized("invalid email or password")
	ErrEmailRequired      = apperror.InvalidInput("email is required")
	ErrNameRequired       = apperror.InvalidInput("name is required")
	ErrPasswordTooShort   = apperror.InvalidInput("password must be at least 8 characters")
	ErrNotSelf            = apperror.Forbidden("users may only modify their own account")
	ErrHasBookings        = apperror.Conflict("user has bookings")
)

// User represents a registered person. Anyone can both own items and book others' items.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// UpdateRequest is a partial update; nil fields are left untouched.
type UpdateRequest struct {
	Name  *string
	Email *string
}
