// Package storage saves uploaded photos on local disk.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/config"
)

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// PhotoStore persists entity photos and returns their public URL path
type PhotoStore interface {
	Save(file *multipart.FileHeader, folder string) (string, error)
	Delete(publicURL string) error
}

// LocalPhotoStore writes files under Dir and serves them from PublicPath
type LocalPhotoStore struct {
	dir        string
	publicPath string
	maxBytes   int64
}

// NewLocalPhotoStore creates the upload directory if needed
func NewLocalPhotoStore(cfg config.UploadConfig) (*LocalPhotoStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalPhotoStore{
		dir:        cfg.Dir,
		publicPath: strings.TrimRight(cfg.PublicPath, "/"),
		maxBytes:   int64(cfg.MaxSizeMB) << 20,
	}, nil
}

// Save validates size and content type, then stores the file under a random name
func (s *LocalPhotoStore) Save(file *multipart.FileHeader, folder string) (string, error) {
	if file.Size > s.maxBytes {
		return "", apperr.Validation(map[string]string{
			"photo": fmt.Sprintf("photo must be at most %d MB", s.maxBytes>>20),
		})
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to detect photo type: %w", err)
	}
	if !allowedPhotoTypes[mtype.String()] {
		return "", apperr.Validation(map[string]string{
			"photo": "photo must be a JPEG, PNG, WebP or GIF image",
		})
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	folder = filepath.Base(folder)
	if err := os.MkdirAll(filepath.Join(s.dir, folder), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload folder: %w", err)
	}

	name := uuid.NewString() + mtype.Extension()
	dst, err := os.Create(filepath.Join(s.dir, folder, name))
	if err != nil {
		return "", fmt.Errorf("failed to create photo file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write photo: %w", err)
	}

	return path.Join(s.publicPath, folder, name), nil
}

// Delete removes a previously saved photo. Unknown paths are ignored.
func (s *LocalPhotoStore) Delete(publicURL string) error {
	rel := strings.TrimPrefix(publicURL, s.publicPath+"/")
	if rel == publicURL || strings.Contains(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}
