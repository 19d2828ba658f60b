package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStorage writes uploaded blobs to the local storage directory, keyed
// by a generated UUID. The public URL for a stored file is served by the
// download endpoint.
type FileStorage struct {
	dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %v", dir, err)
	}
	return &FileStorage{dir: dir}, nil
}

// Save streams src to disk and returns the storage key.
func (fs *FileStorage) Save(src io.Reader) (string, int64, error) {
	key := uuid.NewString() + ".pdf"

	dst, err := os.Create(filepath.Join(fs.dir, key))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %v", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(dst.Name())
		return "", 0, fmt.Errorf("failed to write file: %v", err)
	}

	return key, written, nil
}

func (fs *FileStorage) Path(key string) string {
	return filepath.Join(fs.dir, key)
}

func (fs *FileStorage) Open(key string) (*os.File, error) {
	return os.Open(filepath.Join(fs.dir, key))
}

func (fs *FileStorage) Remove(key string) error {
	err := os.Remove(filepath.Join(fs.dir, key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
