package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uzdenov777/shareit/internal/auth"
	fileHttp "github.com/uzdenov777/shareit/internal/file/http"
	"github.com/uzdenov777/shareit/internal/item"
	"github.com/uzdenov777/shareit/internal/pkg/request"
	"github.com/uzdenov777/shareit/internal/pkg/response"
)

var photoTypes = []string{"image/jpeg", "image/png", "image/gif"}

type Handler struct {
	service         item.Service
	files           *fileHttp.Handler
	maxUploadBytes  int64
	defaultPageSize int
}

func NewHandler(service item.Service, files *fileHttp.Handler, maxUploadBytes int64, defaultPageSize int) *Handler {
	return &Handler{
		service:         service,
		files:           files,
		maxUploadBytes:  maxUploadBytes,
		defaultPageSize: defaultPageSize,
	}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	it, err := h.service.Create(c.Request.Context(), auth.GetUserID(c), item.CreateRequest{
		Name:        body.Name,
		Description: body.Description,
		Available:   body.Available,
		RequestID:   body.RequestID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewItemResponse(it))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	it, err := h.service.Update(c.Request.Context(), auth.GetUserID(c), uri.ID, item.UpdateRequest{
		Name:        body.Name,
		Description: body.Description,
		Available:   body.Available,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewItemResponse(it))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	d, err := h.service.GetDetail(c.Request.Context(), auth.GetUserID(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewItemDetailResponse(d))
}

// ListOwn lists the caller's items with booking briefs.
func (h *Handler) ListOwn(c *gin.Context) {
	from, size, ok := h.bindPage(c)
	if !ok {
		return
	}

	details, total, err := h.service.ListByOwner(c.Request.Context(), auth.GetUserID(c), from, size)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ItemDetailResponse, len(details))
	for i, d := range details {
		items[i] = NewItemDetailResponse(d)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, from, size, total))
}

func (h *Handler) Search(c *gin.Context) {
	var q SearchRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	from, size, ok := h.bindPage(c)
	if !ok {
		return
	}

	found, total, err := h.service.Search(c.Request.Context(), q.Text, from, size)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ItemResponse, len(found))
	for i, it := range found {
		items[i] = NewItemResponse(it)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, from, size, total))
}

func (h *Handler) AddComment(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body CreateCommentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), auth.GetUserID(c), uri.ID, body.Text)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewCommentResponse(comment))
}

// UploadPhoto replaces the item's photo. Only the owner may upload.
func (h *Handler) UploadPhoto(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	userID := auth.GetUserID(c)
	if err := h.service.AuthorizeOwner(c.Request.Context(), userID, uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	h.files.HandleFileUpload(c, fileHttp.FileUploadConfig{
		FormFieldName: "photo",
		MaxSizeBytes:  h.maxUploadBytes,
		AllowedTypes:  photoTypes,
		ResizeImage:   true,
		AfterUpload: func(ctx context.Context, fileID string) error {
			return h.service.SetPhoto(ctx, userID, uri.ID, fileID)
		},
	})
}

func (h *Handler) bindPage(c *gin.Context) (from, size int, ok bool) {
	var page request.PageParams
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return 0, 0, false
	}

	from, size, err := page.Resolve(h.defaultPageSize)
	if err != nil {
		response.Error(c, err)
		return 0, 0, false
	}
	return from, size, true
}
