package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StoredFile describes an uploaded asset persisted on the local filesystem.
type StoredFile struct {
	// Name is the generated unique filename, e.g. "3f2a0b1c-….png".
	Name string
	// Path is the absolute location on disk.
	Path string
	// Original is the client-provided filename.
	Original string
}

// FileStore persists uploaded assets onto the local filesystem. Files are
// never expired or cleaned up by the store itself.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	return &FileStore{basePath: abs}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// SaveUpload streams the upload to disk under a freshly generated unique name
// that keeps the original file extension.
func (s *FileStore) SaveUpload(ctx context.Context, original string, r io.Reader) (*StoredFile, error) {
	if s == nil {
		return nil, errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := uuid.NewString() + uploadExt(original)
	fullPath := filepath.Join(s.basePath, name)

	f, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("storage: create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(fullPath)
		return nil, fmt.Errorf("storage: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("storage: close file: %w", err)
	}
	return &StoredFile{Name: name, Path: fullPath, Original: original}, nil
}

// uploadExt extracts a safe extension from a client-provided filename.
func uploadExt(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if ext == "" || ext == "." {
		return ".png"
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ".png"
		}
	}
	return ext
}
