package files

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// LocalStore writes payloads under a directory on disk and returns file://
// URIs. Used in development when no bucket is configured.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the base directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Put(ctx context.Context, documentID, filename, contentType string, payload io.Reader) (string, error) {
	sub := filepath.Join(s.dir, documentID)
	if err := os.MkdirAll(sub, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), filepath.Base(filename))
	dst := filepath.Join(sub, name)

	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, payload); err != nil {
		os.Remove(dst)
		return "", err
	}
	abs, err := filepath.Abs(dst)
	if err != nil {
		abs = dst
	}
	return "file://" + abs, nil
}

var _ Store = (*LocalStore)(nil)
