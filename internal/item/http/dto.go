package http

import (
	"time"

	"github.com/uzdenov777/shareit/internal/file"
	"github.com/uzdenov777/shareit/internal/item"
)

type CreateItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Available   *bool  `json:"available" binding:"required"`
	RequestID   *int64 `json:"request_id" binding:"omitempty,min=1"`
}

type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type SearchRequest struct {
	Text string `form:"text"`
}

type BookingBrief struct {
	ID       int64 `json:"id"`
	BookerID int64 `json:"booker_id"`
}

type CommentResponse struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"author_name"`
	Created    time.Time `json:"created"`
}

type ItemResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Available    bool    `json:"available"`
	RequestID    *int64  `json:"request_id"`
	PhotoURL     *string `json:"photo_url,omitempty"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
}

type ItemDetailResponse struct {
	ItemResponse
	LastBooking *BookingBrief     `json:"last_booking"`
	NextBooking *BookingBrief     `json:"next_booking"`
	Comments    []CommentResponse `json:"comments"`
}

func NewItemResponse(it *item.Item) ItemResponse {
	resp := ItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Available:   it.Available,
		RequestID:   it.RequestID,
	}
	if it.PhotoID != nil {
		photo := file.FileURL(*it.PhotoID)
		thumb := file.ThumbnailURL(*it.PhotoID)
		resp.PhotoURL = &photo
		resp.ThumbnailURL = &thumb
	}
	return resp
}

func NewCommentResponse(c *item.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		Text:       c.Text,
		AuthorName: c.AuthorName,
		Created:    c.CreatedAt,
	}
}

func NewItemDetailResponse(d *item.Detail) ItemDetailResponse {
	comments := make([]CommentResponse, len(d.Comments))
	for i, c := range d.Comments {
		comments[i] = NewCommentResponse(c)
	}

	return ItemDetailResponse{
		ItemResponse: NewItemResponse(&d.Item),
		LastBooking:  newBookingBrief(d.LastBooking),
		NextBooking:  newBookingBrief(d.NextBooking),
		Comments:     comments,
	}
}

func newBookingBrief(b *item.BookingBrief) *BookingBrief {
	if b == nil {
		return nil
	}
	return &BookingBrief{ID: b.ID, BookerID: b.BookerID}
}
