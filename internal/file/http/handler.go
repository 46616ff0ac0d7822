package http

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uzdenov777/shareit/internal/file"
	"github.com/uzdenov777/shareit/internal/logger"
	"github.com/uzdenov777/shareit/internal/pkg/response"
)

type Handler struct {
	fileService file.Service
	log         *zap.Logger
}

func NewHandler(fileService file.Service, log *zap.Logger) *Handler {
	return &Handler{
		fileService: fileService,
		log:         logger.OrNop(log).Named("file_http"),
	}
}

// ServeFile streams the stored original.
func (h *Handler) ServeFile(c *gin.Context) {
	stream, info, err := h.fileService.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	h.stream(c, info.ContentType, info.Filename, stream)
}

// ServeThumbnail streams the JPEG thumbnail.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	stream, info, err := h.fileService.DownloadThumbnail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	h.stream(c, "image/jpeg", info.Filename+"_thumb.jpg", stream)
}

func (h *Handler) stream(c *gin.Context, contentType, filename string, body io.Reader) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filename}))
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, body); err != nil {
		// Headers are already sent.
		h.log.Warn("file stream interrupted", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
}
