package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/uzdenov777/shareit/internal/item"
	"github.com/uzdenov777/shareit/internal/logger"
	"github.com/uzdenov777/shareit/internal/pkg/apperror"
	"github.com/uzdenov777/shareit/internal/pkg/clock"
)

type CreateRequest struct {
	ItemID int64
	Start  time.Time
	End    time.Time
}

// UserDirectory is the slice of the user module bookings need.
type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// ItemCatalog resolves the item being booked.
type ItemCatalog interface {
	GetByID(ctx context.Context, id int64) (*item.Item, error)
}

type Service interface {
	Create(ctx context.Context, bookerID int64, req CreateRequest) (*Booking, error)
	Decide(ctx context.Context, actingUserID, bookingID int64, approve bool) (*Booking, error)
	GetByID(ctx context.Context, actingUserID, bookingID int64) (*Booking, error)
	List(ctx context.Context, role Role, userID int64, filter StateFilter, page Page) ([]*Booking, int, error)
}

type service struct {
	repo          Repository
	users         UserDirectory
	items         ItemCatalog
	clock         clock.Clock
	rejectOverlap bool
	log           *zap.Logger
}

// NewService builds the booking lifecycle service. With rejectOverlap set, approving a booking
// whose window overlaps an already approved booking of the same item fails with ErrSlotTaken.
func NewService(
	repo Repository,
	users UserDirectory,
	items ItemCatalog,
	clk clock.Clock,
	rejectOverlap bool,
	log *zap.Logger,
) Service {
	return &service{
		repo:          repo,
		users:         users,
		items:         items,
		clock:         clk,
		rejectOverlap: rejectOverlap,
		log:           logger.OrNop(log).Named("booking"),
	}
}

func (s *service) Create(ctx context.Context, bookerID int64, req CreateRequest) (*Booking, error) {
	ok, err := s.users.Exists(ctx, bookerID)
	if err != nil {
		return nil, fmt.Errorf("check booker %d: %w", bookerID, err)
	}
	if !ok {
		return nil, ErrBookerNotFound
	}

	it, err := s.items.GetByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("get item %d: %w", req.ItemID, err)
	}
	if it.OwnerID == bookerID {
		return nil, ErrSelfBooking
	}

	if err := validateWindow(req.Start, req.End, s.clock.Now()); err != nil {
		return nil, err
	}
	if !it.Available {
		return nil, ErrItemUnavailable
	}

	b := &Booking{
		ItemID:   it.ID,
		BookerID: bookerID,
		Start:    req.Start.UTC(),
		End:      req.End.UTC(),
		Status:   StatusWaiting,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.log.Info("booking created",
		zap.Int64("booking_id", b.ID),
		zap.Int64("item_id", b.ItemID),
		zap.Int64("booker_id", bookerID),
	)

	// Re-read so the item and booker projections are populated.
	return s.repo.GetByID(ctx, b.ID)
}

// validateWindow checks the requested window against a single snapshot of now.
func validateWindow(start, end, now time.Time) error {
	if !end.After(now) {
		return ErrEndInPast
	}
	if !start.After(now) {
		return ErrStartInPast
	}
	if start.Equal(end) {
		return ErrZeroLength
	}
	if end.Before(start) {
		return ErrInvertedWindow
	}
	return nil
}

func (s *service) Decide(ctx context.Context, actingUserID, bookingID int64, approve bool) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Item.OwnerID != actingUserID {
		return nil, ErrNotItemOwner
	}

	to, err := b.Status.Decide(approve)
	if err != nil {
		return nil, err
	}

	err = s.repo.UpdateStatus(ctx, StatusChange{
		Booking:           b,
		To:                to,
		ExclusiveApproval: s.rejectOverlap,
	})
	if err != nil {
		if kind := apperror.KindOf(err); kind != apperror.KindInternal {
			s.log.Info("booking decision refused",
				zap.Int64("booking_id", bookingID), zap.String("kind", string(kind)), zap.Error(err))
		}
		return nil, err
	}

	b.Status = to
	s.log.Info("booking decided",
		zap.Int64("booking_id", b.ID),
		zap.Int64("owner_id", actingUserID),
		zap.String("status", string(to)),
	)
	return b, nil
}

func (s *service) GetByID(ctx context.Context, actingUserID, bookingID int64) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.BookerID != actingUserID && b.Item.OwnerID != actingUserID {
		return nil, ErrNotParticipant
	}
	return b, nil
}

func (s *service) List(ctx context.Context, role Role, userID int64, filter StateFilter, page Page) ([]*Booking, int, error) {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("check user %d: %w", userID, err)
	}
	if !ok {
		return nil, 0, ErrAccessDenied
	}

	q, err := NewQuery(role, userID, filter, s.clock.Now(), page)
	if err != nil {
		return nil, 0, err
	}

	bookings, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	if bookings == nil {
		bookings = []*Booking{}
	}

	s.log.Debug("bookings listed",
		zap.Stringer("role", role),
		zap.Int64("user_id", userID),
		zap.String("state", string(filter)),
		zap.Int("returned", len(bookings)),
		zap.Int("total", total),
	)
	return bookings, total, nil
}
