package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uzdenov777/shareit/internal/auth"
	"github.com/uzdenov777/shareit/internal/booking"
	"github.com/uzdenov777/shareit/internal/pkg/request"
	"github.com/uzdenov777/shareit/internal/pkg/response"
)

type Handler struct {
	service         booking.Service
	defaultPageSize int
}

func NewHandler(service booking.Service, defaultPageSize int) *Handler {
	return &Handler{
		service:         service,
		defaultPageSize: defaultPageSize,
	}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), auth.GetUserID(c), booking.CreateRequest{
		ItemID: body.ItemID,
		Start:  body.Start,
		End:    body.End,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

// Decide approves or rejects a waiting booking. Only the item owner may call it.
func (h *Handler) Decide(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var q DecideRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "approved must be true or false", err)
		return
	}

	b, err := h.service.Decide(c.Request.Context(), auth.GetUserID(c), uri.ID, *q.Approved)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), auth.GetUserID(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// ListBooked lists bookings made by the caller.
func (h *Handler) ListBooked(c *gin.Context) {
	h.list(c, booking.RoleBooker)
}

// ListOwned lists bookings of items the caller owns.
func (h *Handler) ListOwned(c *gin.Context) {
	h.list(c, booking.RoleOwner)
}

func (h *Handler) list(c *gin.Context, role booking.Role) {
	var q ListBookingsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if q.State == "" {
		q.State = string(booking.StateAll)
	}

	filter, err := booking.ParseStateFilter(q.State)
	if err != nil {
		response.Error(c, err)
		return
	}

	var page request.PageParams
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	from, size, err := page.Resolve(h.defaultPageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	found, total, err := h.service.List(c.Request.Context(), role, auth.GetUserID(c), filter,
		booking.Page{Offset: from, Limit: size})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(found))
	for i, b := range found {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, from, size, total))
}
