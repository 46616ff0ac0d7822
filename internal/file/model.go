package file

import (
	"mime/multipart"
	"time"

	"github.com/uzdenov777/shareit/internal/pkg/apperror"
)

var (
	ErrNotFound             = apperror.NotFound("file not found")
	ErrThumbnailUnavailable = apperror.NotFound("thumbnail not available for this file")
	ErrTooLarge             = apperror.New(413, "file is too large")
	ErrUnsupportedType      = apperror.New(415, "file type is not allowed")
	ErrNotAnImage           = apperror.InvalidInput("file is not a decodable image")
)

// File is an uploaded blob plus its optional JPEG thumbnail.
type File struct {
	ID            string
	UserID        int64
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// UploadInput describes one upload and the rules it must satisfy.
type UploadInput struct {
	FileHeader   *multipart.FileHeader
	UserID       int64
	MaxSizeBytes int64    // 0 means no limit
	AllowedTypes []string // empty allows every type
	ResizeImage  bool     // re-encode as JPEG bounded to 1000x1000
}

// FileURL returns the public URL for accessing a file by its ID.
func FileURL(id string) string {
	return "/v1/files/" + id
}

// ThumbnailURL returns the public URL for accessing a file's thumbnail by its ID.
func ThumbnailURL(id string) string {
	return "/v1/files/" + id + "/thumbnail"
}
