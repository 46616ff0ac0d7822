package http

import (
	"time"

	"github.com/uzdenov777/shareit/internal/booking"
)

type CreateBookingRequest struct {
	ItemID int64     `json:"item_id" binding:"required,min=1"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

type DecideRequest struct {
	Approved *bool `form:"approved" binding:"required"`
}

type ListBookingsRequest struct {
	State string `form:"state"`
}

type ItemRef struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type BookerRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BookingResponse struct {
	ID     int64     `json:"id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status string    `json:"status"`
	Item   ItemRef   `json:"item"`
	Booker BookerRef `json:"booker"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:     b.ID,
		Start:  b.Start,
		End:    b.End,
		Status: string(b.Status),
		Item: ItemRef{
			ID:          b.Item.ID,
			Name:        b.Item.Name,
			Description: b.Item.Description,
		},
		Booker: BookerRef{
			ID:    b.Booker.ID,
			Name:  b.Booker.Name,
			Email: b.Booker.Email,
		},
	}
}
