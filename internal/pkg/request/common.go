package request

import (
	"github.com/uzdenov777/shareit/internal/pkg/apperror"
)

const DefaultPageSize = 10

var (
	ErrNegativeFrom = apperror.InvalidInput("from must not be negative")
	ErrSizeTooSmall = apperror.InvalidInput("size must be at least 1")
)

// ByIDRequest is a common struct for endpoints that require a numeric ID path parameter.
type ByIDRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// PageParams carries the from/size query pair shared by list endpoints.
// Pointers tell "absent" apart from an explicit zero.
type PageParams struct {
	From *int `form:"from"`
	Size *int `form:"size"`
}

// Resolve applies defaults and validates the pair.
// from is an exact record offset and is never rounded to a multiple of size.
func (p PageParams) Resolve(defaultSize int) (from, size int, err error) {
	if defaultSize < 1 {
		defaultSize = DefaultPageSize
	}

	from, size = 0, defaultSize
	if p.From != nil {
		from = *p.From
	}
	if p.Size != nil {
		size = *p.Size
	}

	if from < 0 {
		return 0, 0, ErrNegativeFrom
	}
	if size < 1 {
		return 0, 0, ErrSizeTooSmall
	}
	return from, size, nil
}
