package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ImageStore persists uploaded image bytes and returns an opaque
// reference for later retrieval or deletion.
type ImageStore interface {
	Save(ctx context.Context, data []byte, extension string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// LocalStore writes images to a directory on the local filesystem and
// serves them under the /uploads URL prefix. References look like
// "/uploads/produto-1712345678901234.png".
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save writes the bytes under a timestamped filename so references
// never collide in practice.
func (s *LocalStore) Save(_ context.Context, data []byte, extension string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(extension), ".")
	if ext == "" {
		ext = "jpg"
	}

	filename := fmt.Sprintf("produto-%d.%s", time.Now().UnixNano(), ext)
	path := filepath.Join(s.dir, filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return "/uploads/" + filename, nil
}

// Delete removes the file behind a reference. A reference that does
// not resolve to a file inside the store directory is rejected.
func (s *LocalStore) Delete(_ context.Context, ref string) error {
	filename := filepath.Base(strings.TrimPrefix(ref, "/uploads/"))
	if filename == "." || filename == "/" || filename == ".." {
		return fmt.Errorf("invalid image reference: %q", ref)
	}

	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// Dir returns the directory files are stored in. The cleanup worker
// sweeps it for files no product references anymore.
func (s *LocalStore) Dir() string {
	return s.dir
}
