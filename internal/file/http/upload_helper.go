package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uzdenov777/shareit/internal/auth"
	"github.com/uzdenov777/shareit/internal/file"
	"github.com/uzdenov777/shareit/internal/pkg/response"
)

// FileUploadConfig defines the configuration for generic file uploads
type FileUploadConfig struct {
	FormFieldName string                                         // default: "file"
	MaxSizeBytes  int64                                          // 0 = no limit
	AllowedTypes  []string                                       // empty = allow all
	ResizeImage   bool                                           // re-encode as JPEG bounded to 1000x1000
	AfterUpload   func(ctx context.Context, fileID string) error // links the file to its owner entity
}

// HandleFileUpload stores the multipart file and runs AfterUpload.
// If the hook fails the stored file is removed again.
func (h *Handler) HandleFileUpload(c *gin.Context, config FileUploadConfig) {
	fieldName := config.FormFieldName
	if fieldName == "" {
		fieldName = "file"
	}

	fileHeader, err := c.FormFile(fieldName)
	if err != nil {
		response.BadRequest(c, fieldName+" is required", nil)
		return
	}

	ctx := c.Request.Context()

	f, err := h.fileService.Upload(ctx, file.UploadInput{
		FileHeader:   fileHeader,
		UserID:       auth.GetUserID(c),
		MaxSizeBytes: config.MaxSizeBytes,
		AllowedTypes: config.AllowedTypes,
		ResizeImage:  config.ResizeImage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if config.AfterUpload != nil {
		if err := config.AfterUpload(ctx, f.ID); err != nil {
			if delErr := h.fileService.Delete(ctx, f.ID); delErr != nil {
				h.log.Warn("rollback of uploaded file failed", zap.String("file_id", f.ID), zap.Error(delErr))
			}
			response.Error(c, err)
			return
		}
	}

	var thumbURL *string
	if f.ThumbnailPath != nil {
		t := file.ThumbnailURL(f.ID)
		thumbURL = &t
	}

	c.JSON(http.StatusCreated, FileUploadResponse{
		Message:      "file uploaded successfully",
		FileID:       f.ID,
		URL:          file.FileURL(f.ID),
		ThumbnailURL: thumbURL,
	})
}
