package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uzdenov777/shareit/internal/logger"
	"github.com/uzdenov777/shareit/internal/pkg/storage"
)

const (
	thumbnailSize = 200
	resizedSize   = 1000
)

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*File, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*File, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *File, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error)
}

type service struct {
	repo    Repository
	storage storage.Storage
	imgProc *storage.ImageProcessor
	log     *zap.Logger
	now     func() time.Time
}

func NewService(repo Repository, store storage.Storage, log *zap.Logger) Service {
	return &service{
		repo:    repo,
		storage: store,
		imgProc: storage.NewImageProcessor(),
		log:     logger.OrNop(log).Named("file"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*File, error) {
	header := in.FileHeader
	if in.MaxSizeBytes > 0 && header.Size > in.MaxSizeBytes {
		return nil, ErrTooLarge
	}

	contentType := header.Header.Get("Content-Type")
	if len(in.AllowedTypes) > 0 && !slices.Contains(in.AllowedTypes, contentType) {
		return nil, ErrUnsupportedType
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Buffered so the bytes can be decoded for the thumbnail and saved.
	fileBytes, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	filename := header.Filename
	ext := strings.ToLower(filepath.Ext(filename))
	size := int64(len(fileBytes))

	if in.ResizeImage {
		resized, err := s.imgProc.GenerateThumbnail(bytes.NewReader(fileBytes), resizedSize, resizedSize)
		if err != nil {
			return nil, ErrNotAnImage
		}
		if fileBytes, err = io.ReadAll(resized); err != nil {
			return nil, fmt.Errorf("failed to read resized image: %w", err)
		}
		contentType = "image/jpeg"
		ext = ".jpg"
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + ext
		size = int64(len(fileBytes))
	}

	fileID := uuid.New().String()

	// Sharding path: upload/ab/UUID.ext
	shard := fileID[:2]
	storagePath := fmt.Sprintf("upload/%s/%s%s", shard, fileID, ext)

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(fileBytes)); err != nil {
		return nil, fmt.Errorf("failed to save file to storage: %w", err)
	}

	var thumbnailPath *string
	if strings.HasPrefix(contentType, "image/") {
		thumbPath := fmt.Sprintf("upload/%s/%s_thumb.jpg", shard, fileID)
		if err := s.saveThumbnail(ctx, fileBytes, thumbPath); err != nil {
			// The original is still usable without a thumbnail.
			s.log.Warn("thumbnail generation failed", zap.String("file_id", fileID), zap.Error(err))
		} else {
			thumbnailPath = &thumbPath
		}
	}

	f := &File{
		ID:            fileID,
		UserID:        in.UserID,
		Filename:      filename,
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          size,
		CreatedAt:     s.now(),
	}

	if err := s.repo.Create(ctx, f); err != nil {
		_ = s.storage.Delete(ctx, storagePath)
		if thumbnailPath != nil {
			_ = s.storage.Delete(ctx, *thumbnailPath)
		}
		return nil, err
	}

	return f, nil
}

func (s *service) saveThumbnail(ctx context.Context, content []byte, path string) error {
	thumb, err := s.imgProc.GenerateThumbnail(bytes.NewReader(content), thumbnailSize, thumbnailSize)
	if err != nil {
		return err
	}
	return s.storage.Save(ctx, path, thumb)
}

func (s *service) Delete(ctx context.Context, id string) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, f.StoragePath); err != nil {
		s.log.Warn("failed to delete stored file", zap.String("file_id", id), zap.Error(err))
	}
	if f.ThumbnailPath != nil {
		if err := s.storage.Delete(ctx, *f.ThumbnailPath); err != nil {
			s.log.Warn("failed to delete stored thumbnail", zap.String("file_id", id), zap.Error(err))
		}
	}

	return s.repo.Delete(ctx, id)
}

func (s *service) Get(ctx context.Context, id string) (*File, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.storage.Get(ctx, f.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to retrieve file from storage: %w", err)
	}

	return stream, f, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if f.ThumbnailPath == nil {
		return nil, nil, ErrThumbnailUnavailable
	}

	stream, err := s.storage.Get(ctx, *f.ThumbnailPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, nil, ErrThumbnailUnavailable
		}
		return nil, nil, fmt.Errorf("failed to retrieve thumbnail from storage: %w", err)
	}

	return stream, f, nil
}
