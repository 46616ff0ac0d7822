package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uzdenov777/shareit/internal/auth"
	"github.com/uzdenov777/shareit/internal/itemrequest"
	"github.com/uzdenov777/shareit/internal/pkg/request"
	"github.com/uzdenov777/shareit/internal/pkg/response"
)

type Handler struct {
	service         itemrequest.Service
	defaultPageSize int
}

func NewHandler(service itemrequest.Service, defaultPageSize int) *Handler {
	return &Handler{service: service, defaultPageSize: defaultPageSize}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	r, err := h.service.Create(c.Request.Context(), auth.GetUserID(c), body.Description)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewResponse(r))
}

// ListOwn returns the caller's requests, newest first, unpaginated.
func (h *Handler) ListOwn(c *gin.Context) {
	list, err := h.service.ListOwn(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ItemRequestResponse, len(list))
	for i, r := range list {
		items[i] = NewResponse(r)
	}
	c.JSON(http.StatusOK, items)
}

// ListAll returns other users' requests, newest first.
func (h *Handler) ListAll(c *gin.Context) {
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

	list, total, err := h.service.ListOthers(c.Request.Context(), auth.GetUserID(c), from, size)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ItemRequestResponse, len(list))
	for i, r := range list {
		items[i] = NewResponse(r)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, from, size, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	r, err := h.service.Get(c.Request.Context(), auth.GetUserID(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(r))
}
