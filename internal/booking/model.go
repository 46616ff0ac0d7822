package booking

import (
	"net/http"
	"strings"
	"time"

	"github.com/uzdenov777/shareit/internal/pkg/apperror"
	"github.com/uzdenov777/shareit/internal/pkg/request"
)

var (
	ErrNotFound        = apperror.NotFound("booking not found")
	ErrBookerNotFound  = apperror.NotFound("booker not found")
	ErrItemNotFound    = apperror.NotFound("item not found")
	ErrSelfBooking     = apperror.Conflict("owner cannot book their own item")
	ErrEndInPast       = apperror.InvalidInput("end must be in the future")
	ErrStartInPast     = apperror.InvalidInput("start must be in the future")
	ErrZeroLength      = apperror.InvalidInput("start and end must differ")
	ErrInvertedWindow  = apperror.InvalidInput("end must be after start")
	ErrItemUnavailable = apperror.InvalidInput("item is not available for booking")
	ErrNotItemOwner    = apperror.Forbidden("only the item owner can decide on a booking")
	ErrNotParticipant  = apperror.Forbidden("only the booker or the item owner can view this booking")
	ErrAccessDenied    = apperror.Forbidden("access denied")
	ErrAlreadyDecided  = apperror.InvalidState("booking has already been decided")
	ErrUnknownState    = apperror.InvalidInput("unknown state")
	ErrSlotTaken       = apperror.Conflict("time slot already booked")
)

// Status is the approval state of a booking.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Decide is the only transition: WAITING moves to APPROVED or REJECTED, once.
func (s Status) Decide(approve bool) (Status, error) {
	if s != StatusWaiting {
		return s, ErrAlreadyDecided
	}
	if approve {
		return StatusApproved, nil
	}
	return StatusRejected, nil
}

// StateFilter selects a temporal or status bucket of bookings for listing.
type StateFilter string

const (
	StateAll      StateFilter = "ALL"
	StateCurrent  StateFilter = "CURRENT"
	StatePast     StateFilter = "PAST"
	StateFuture   StateFilter = "FUTURE"
	StateWaiting  StateFilter = "WAITING"
	StateRejected StateFilter = "REJECTED"
)

// ParseStateFilter accepts the filter names case-insensitively.
func ParseStateFilter(raw string) (StateFilter, error) {
	f := StateFilter(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := filterPlans[f]; !ok {
		return "", apperror.Wrap(ErrUnknownState, http.StatusBadRequest, "Unknown state: "+raw)
	}
	return f, nil
}

// Role is the perspective a user lists bookings from.
type Role int

const (
	RoleBooker Role = iota
	RoleOwner
)

func (r Role) String() string {
	if r == RoleOwner {
		return "owner"
	}
	return "booker"
}

type ItemSummary struct {
	ID          int64
	Name        string
	Description string
	OwnerID     int64
}

type BookerSummary struct {
	ID    int64
	Name  string
	Email string
}

// Booking is a reservation of an item for a time window.
// Item and Booker are joined in at read time and never stored on the booking row.
type Booking struct {
	ID       int64
	ItemID   int64
	BookerID int64
	Start    time.Time
	End      time.Time
	Status   Status
	Item     ItemSummary
	Booker   BookerSummary
}

// Page is an exact record window: skip Offset rows, return at most Limit.
type Page struct {
	Offset int
	Limit  int
}

func (p Page) Validate() error {
	if p.Offset < 0 {
		return request.ErrNegativeFrom
	}
	if p.Limit < 1 {
		return request.ErrSizeTooSmall
	}
	return nil
}
