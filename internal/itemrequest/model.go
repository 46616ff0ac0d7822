package itemrequest

import (
	"context"
	"time"

	"github.com/uzdenov777/shareit/internal/item"
	"github.com/uzdenov777/shareit/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.NotFound("item request not found")
	ErrUserNotFound        = apperror.NotFound("user not found")
	ErrDescriptionRequired = apperror.InvalidInput("description is required")
)

// ItemRequest is a wish for an item nobody has listed yet.
// Items lists the items other users created in answer to it.
type ItemRequest struct {
	ID          int64
	RequestorID int64
	Description string
	CreatedAt   time.Time
	Items       []*item.Item
}

type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// AnswerSource finds the items created in answer to requests.
type AnswerSource interface {
	ListByRequestIDs(ctx context.Context, requestIDs []int64) (map[int64][]*item.Item, error)
}
