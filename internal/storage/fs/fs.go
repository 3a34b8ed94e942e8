// Package fs implements storage.Storage on the local filesystem. Files
// are written to a temp file in the target directory and renamed into
// place so a crash mid-write never leaves a partial image visible.
package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Riiturii/oc-monvieuxgrimoire/internal/storage"
)

// Storage implements storage.Storage backed by a local directory.
type Storage struct {
	dir     string
	baseURL string
}

// New creates the base directory if needed and returns a filesystem
// storage rooted there. baseURL is the public prefix under which the
// files are served, e.g. "http://localhost:4000/images".
func New(dir, baseURL string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &Storage{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload writes the file under its key and returns the public URL.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	key := filepath.Base(input.Key)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, input.Data); err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, key)); err != nil {
		return nil, fmt.Errorf("rename temp file: %w", err)
	}

	return &storage.UploadResult{
		Key: key,
		URL: s.urlFor(key),
	}, nil
}

// Delete removes the file for the key. A missing file is treated as
// already deleted.
func (s *Storage) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// GetURL returns the public URL for the given key.
func (s *Storage) GetURL(_ context.Context, key string) (string, error) {
	return s.urlFor(filepath.Base(key)), nil
}

// Dir returns the directory files are stored in, for serving.
func (s *Storage) Dir() string {
	return s.dir
}

func (s *Storage) urlFor(key string) string {
	return s.baseURL + "/" + key
}
