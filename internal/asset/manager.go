// Package asset owns the image side of a book's lifecycle: incoming
// covers are normalized to a fixed-size JPEG, stored under a generated
// key, and released again when the owning record is deleted or the
// cover is replaced.
package asset

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/Riiturii/oc-monvieuxgrimoire/internal/storage"
	apperrors "github.com/Riiturii/oc-monvieuxgrimoire/pkg/errors"
)

// Normalized cover dimensions. Every stored cover has exactly this
// geometry regardless of the uploaded image.
const (
	CoverWidth  = 463
	CoverHeight = 595
)

// jpegQuality is the encode quality for normalized covers.
const jpegQuality = 80

// MaxUploadSize bounds the accepted size of a raw cover upload.
const MaxUploadSize = 10 << 20 // 10 MiB

// Manager coordinates cover normalization, storage, and release.
type Manager struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewManager creates a new asset manager backed by the given storage.
func NewManager(store storage.Storage, logger *slog.Logger) *Manager {
	return &Manager{storage: store, logger: logger}
}

// Store normalizes the raw upload and writes it to storage under a
// fresh key. The returned URL is what gets persisted on the book.
func (m *Manager) Store(ctx context.Context, data []byte) (*storage.UploadResult, error) {
	normalized, err := Normalize(data)
	if err != nil {
		return nil, err
	}

	key := uuid.New().String() + ".jpg"

	result, err := m.storage.Upload(ctx, &storage.UploadInput{
		Key:         key,
		ContentType: "image/jpeg",
		Size:        int64(len(normalized)),
		Data:        bytes.NewReader(normalized),
	})
	if err != nil {
		return nil, fmt.Errorf("upload cover: %w", err)
	}

	return result, nil
}

// Release removes the stored cover referenced by imageURL. Releasing a
// cover that is already gone succeeds, so retries are safe.
func (m *Manager) Release(ctx context.Context, imageURL string) error {
	key := KeyFromURL(imageURL)
	if key == "" {
		return nil
	}

	if err := m.storage.Delete(ctx, key); err != nil {
		return apperrors.AssetRelease(key, err)
	}

	return nil
}

// KeyFromURL extracts the storage key from a stored cover URL, i.e.
// the final path segment. An empty URL yields an empty key.
func KeyFromURL(imageURL string) string {
	if imageURL == "" {
		return ""
	}
	if i := strings.LastIndex(imageURL, "/"); i >= 0 {
		return imageURL[i+1:]
	}
	return imageURL
}

// Normalize decodes a JPEG, PNG, or WebP image and re-encodes it as a
// JPEG scaled to exactly CoverWidth x CoverHeight. Undecodable input
// is reported as an image processing failure.
func Normalize(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, apperrors.InvalidInput("cover image is empty")
	}
	if int64(len(data)) > MaxUploadSize {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cover image exceeds maximum size of %d bytes", MaxUploadSize))
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.ImageProcessing(err)
	}

	scaled := image.NewRGBA(image.Rect(0, 0, CoverWidth, CoverHeight))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, apperrors.ImageProcessing(err)
	}

	return buf.Bytes(), nil
}
