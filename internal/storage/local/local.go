package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Hasib072/BookNest/internal/storage"
)

// Storage implements storage.Storage on the local filesystem. Files are
// written under a base directory and served by the HTTP server under a
// public path prefix.
type Storage struct {
	baseDir string
	baseURL string
}

// New creates a local-disk storage rooted at baseDir. The directory is
// created if it does not exist.
func New(baseDir, baseURL string) (*Storage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Upload writes the file to disk and returns its public URL.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	// Keys are server-generated, but reject path separators anyway so a bad
	// caller can't escape the base directory.
	if input.Key == "" || strings.ContainsAny(input.Key, "/\\") || strings.Contains(input.Key, "..") {
		return nil, fmt.Errorf("invalid storage key: %q", input.Key)
	}

	path := filepath.Join(s.baseDir, input.Key)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(f, input.Data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("write file: %w", err)
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close file: %w", err)
	}

	return &storage.UploadResult{
		Key: input.Key,
		URL: s.baseURL + "/" + input.Key,
	}, nil
}

// Delete removes a file by its key.
func (s *Storage) Delete(_ context.Context, key string) error {
	if key == "" || strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return fmt.Errorf("invalid storage key: %q", key)
	}

	if err := os.Remove(filepath.Join(s.baseDir, key)); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}
