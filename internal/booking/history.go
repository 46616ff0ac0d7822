package booking

import (
	"context"

	"github.com/uzdenov777/shareit/internal/item"
	"github.com/uzdenov777/shareit/internal/pkg/clock"
)

// History answers the item module's questions about past and upcoming rentals.
type History struct {
	repo  Repository
	clock clock.Clock
}

var _ item.RentalHistory = (*History)(nil)

func NewHistory(repo Repository, clk clock.Clock) *History {
	return &History{repo: repo, clock: clk}
}

// HasCompletedRental reports whether the user has an approved booking of the item that has already ended.
func (h *History) HasCompletedRental(ctx context.Context, userID, itemID int64) (bool, error) {
	past, err := h.repo.FindPastCompleted(ctx, userID, itemID, h.clock.Now())
	if err != nil {
		return false, err
	}
	return len(past) > 0, nil
}

func (h *History) LastAndNext(ctx context.Context, itemID int64) (*item.BookingBrief, *item.BookingBrief, error) {
	now := h.clock.Now()

	last, err := h.repo.FindLastApproved(ctx, itemID, now)
	if err != nil {
		return nil, nil, err
	}
	next, err := h.repo.FindNextApproved(ctx, itemID, now)
	if err != nil {
		return nil, nil, err
	}
	return brief(last), brief(next), nil
}

func brief(b *Booking) *item.BookingBrief {
	if b == nil {
		return nil
	}
	return &item.BookingBrief{ID: b.ID, BookerID: b.BookerID}
}
