package file

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uzdenov777/shareit/internal/pkg/storage"
)

type memRepo struct {
	mu    sync.Mutex
	files map[string]*File
}

func (r *memRepo) Create(_ context.Context, f *File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *f
	r.files[f.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[id]; !ok {
		return ErrNotFound
	}
	delete(r.files, id)
	return nil
}

func fileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func newTestService(t *testing.T) (Service, *memRepo) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := &memRepo{files: map[string]*File{}}
	return NewService(repo, store, nil), repo
}

func TestUploadImageStoresThumbnail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	f, err := svc.Upload(ctx, UploadInput{
		FileHeader:   fileHeader(t, "drill.png", "image/png", pngBytes(t, 1200, 600)),
		UserID:       3,
		AllowedTypes: []string{"image/png", "image/jpeg"},
		ResizeImage:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", f.ContentType)
	assert.Equal(t, "drill.jpg", f.Filename)
	require.NotNil(t, f.ThumbnailPath)

	rc, _, err := svc.Download(ctx, f.ID)
	require.NoError(t, err)
	img, _, err := image.Decode(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, 1000, img.Bounds().Dx())

	thumb, _, err := svc.DownloadThumbnail(ctx, f.ID)
	require.NoError(t, err)
	_, err = io.ReadAll(thumb)
	require.NoError(t, thumb.Close())
	require.NoError(t, err)
}

func TestUploadRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Upload(ctx, UploadInput{
		FileHeader:   fileHeader(t, "notes.txt", "text/plain", []byte("hello")),
		AllowedTypes: []string{"image/png"},
	})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = svc.Upload(ctx, UploadInput{
		FileHeader:   fileHeader(t, "big.png", "image/png", pngBytes(t, 50, 50)),
		MaxSizeBytes: 10,
	})
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = svc.Upload(ctx, UploadInput{
		FileHeader:  fileHeader(t, "fake.png", "image/png", []byte("not really")),
		ResizeImage: true,
	})
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestNonImageHasNoThumbnailAndDeleteCleansUp(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	f, err := svc.Upload(ctx, UploadInput{
		FileHeader: fileHeader(t, "manual.pdf", "application/pdf", []byte("%PDF-1.4")),
	})
	require.NoError(t, err)
	assert.Nil(t, f.ThumbnailPath)

	_, _, err = svc.DownloadThumbnail(ctx, f.ID)
	assert.ErrorIs(t, err, ErrThumbnailUnavailable)

	require.NoError(t, svc.Delete(ctx, f.ID))
	assert.Empty(t, repo.files)

	_, _, err = svc.Download(ctx, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
