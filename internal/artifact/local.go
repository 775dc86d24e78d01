// Package artifact handles temporary upload files consumed by the import
// pipeline.
package artifact

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// LocalStore reads and removes artifacts on the local filesystem and saves
// incoming uploads under a base directory.
type LocalStore struct {
	baseDir string
}

func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

func (s *LocalStore) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	return f, nil
}

func (s *LocalStore) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove artifact: %w", err)
	}
	return nil
}

// SaveUpload persists a multipart upload to a uniquely named file under the
// base directory and returns its path.
func (s *LocalStore) SaveUpload(src multipart.File, filename string) (string, error) {
	name := strconv.FormatInt(time.Now().UnixNano(), 10) + "-" + filepath.Base(filename)
	path := filepath.Join(s.baseDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return path, nil
}
