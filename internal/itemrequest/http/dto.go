package http

import (
	"time"

	"github.com/uzdenov777/shareit/internal/itemrequest"
)

type CreateRequest struct {
	Description string `json:"description" binding:"required"`
}

// AnswerResponse is an item created in answer to a request.
type AnswerResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"owner_id"`
	RequestID   int64  `json:"request_id"`
}

type ItemRequestResponse struct {
	ID          int64            `json:"id"`
	Description string           `json:"description"`
	RequestorID int64            `json:"requestor_id"`
	Created     time.Time        `json:"created"`
	Items       []AnswerResponse `json:"items"`
}

func NewResponse(r *itemrequest.ItemRequest) ItemRequestResponse {
	items := make([]AnswerResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, AnswerResponse{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Available:   it.Available,
			OwnerID:     it.OwnerID,
			RequestID:   r.ID,
		})
	}

	return ItemRequestResponse{
		ID:          r.ID,
		Description: r.Description,
		RequestorID: r.RequestorID,
		Created:     r.CreatedAt,
		Items:       items,
	}
}
