package item

import (
	"context"
	"time"

	"github.com/uzdenov777/shareit/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.NotFound("item not found")
	ErrOwnerNotFound       = apperror.NotFound("owner not found")
	ErrUserNotFound        = apperror.NotFound("user not found")
	ErrRequestNotFound     = apperror.NotFound("item request not found")
	ErrNotOwner            = apperror.Forbidden("only the owner can modify this item")
	ErrNameRequired        = apperror.InvalidInput("name is required")
	ErrDescriptionRequired = apperror.InvalidInput("description is required")
	ErrAvailableRequired   = apperror.InvalidInput("available is required")
	ErrCommentTextRequired = apperror.InvalidInput("comment text is required")
	ErrNoCompletedRental   = apperror.InvalidInput("user has no completed rental of this item")
)

// Item is a thing a user offers for rent.
type Item struct {
	ID          int64
	OwnerID     int64
	Name        string
	Description string
	Available   bool
	RequestID   *int64
	PhotoID     *string
	CreatedAt   time.Time
}

// BookingBrief identifies a booking in item projections.
type BookingBrief struct {
	ID       int64
	BookerID int64
}

// Comment is feedback left by a renter after a completed rental.
type Comment struct {
	ID         int64
	ItemID     int64
	AuthorID   int64
	AuthorName string
	Text       string
	CreatedAt  time.Time
}

// Detail is the read model for a single item.
// LastBooking and NextBooking are only filled in for the owner.
type Detail struct {
	Item
	LastBooking *BookingBrief
	NextBooking *BookingBrief
	Comments    []*Comment
}

// RentalHistory answers questions about an item's bookings.
type RentalHistory interface {
	HasCompletedRental(ctx context.Context, userID, itemID int64) (bool, error)
	LastAndNext(ctx context.Context, itemID int64) (last, next *BookingBrief, err error)
}

// UserDirectory is the slice of the user module items need.
type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// RequestLookup checks that an item request exists.
type RequestLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type CreateRequest struct {
	Name        string
	Description string
	Available   *bool
	RequestID   *int64
}

// UpdateRequest is partial; nil and blank fields are ignored.
type UpdateRequest struct {
	Name        *string
	Description *string
	Available   *bool
}
