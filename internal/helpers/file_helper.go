package helpers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/farellandr/eventhub/internal/apperr"
	"github.com/google/uuid"
)

type UploadConfig struct {
	MaxSizeBytes int64
	// AllowedMimeTypes maps a sniffed content type to the extension used
	// for the stored file.
	AllowedMimeTypes map[string]string
	UploadBasePath   string
}

var DefaultImageUploadConfig = UploadConfig{
	MaxSizeBytes: 5 * 1024 * 1024, // 5MB
	AllowedMimeTypes: map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/gif":  ".gif",
		"image/webp": ".webp",
	},
	UploadBasePath: "./uploads/",
}

// FileStorage writes uploads of one type (e.g. "user_photos") below the
// configured base path under random names.
type FileStorage struct {
	config UploadConfig
	dir    string
}

func NewFileStorage(uploadType string, config UploadConfig) (*FileStorage, error) {
	dir := filepath.Join(config.UploadBasePath, uploadType)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &FileStorage{config: config, dir: dir}, nil
}

// Save checks size and sniffed content type, then copies r to a new file.
func (s *FileStorage) Save(r io.ReadSeeker, size int64) (string, string, error) {
	if size > s.config.MaxSizeBytes {
		return "", "", apperr.InvalidArgument("file size exceeds maximum limit of %d MB", s.config.MaxSizeBytes/(1024*1024))
	}

	buffer := make([]byte, 512)
	n, err := r.Read(buffer)
	if err != nil && err != io.EOF {
		return "", "", err
	}
	mimeType := http.DetectContentType(buffer[:n])

	ext, ok := s.config.AllowedMimeTypes[mimeType]
	if !ok {
		return "", "", apperr.InvalidArgument("invalid file type %s", mimeType)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", "", err
	}

	filename := uuid.New().String() + ext
	dst, err := os.OpenFile(s.Path(filename), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", "", err
	}
	written, err := io.Copy(dst, io.LimitReader(r, s.config.MaxSizeBytes+1))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written > s.config.MaxSizeBytes {
		err = apperr.InvalidArgument("file size exceeds maximum limit of %d MB", s.config.MaxSizeBytes/(1024*1024))
	}
	if err != nil {
		_ = os.Remove(s.Path(filename))
		return "", "", err
	}
	return filename, mimeType, nil
}

// Path returns the on-disk location of filename. Directory components in
// filename are dropped.
func (s *FileStorage) Path(filename string) string {
	return filepath.Join(s.dir, filepath.Base(filename))
}

func (s *FileStorage) Remove(filename string) error {
	err := os.Remove(s.Path(filename))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
