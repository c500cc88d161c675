package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/config"
)

// 1x1 transparent PNG
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("photo", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["photo"][0]
}

func TestLocalPhotoStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalPhotoStore(config.UploadConfig{Dir: dir, PublicPath: "/uploads/", MaxSizeMB: 1})
	require.NoError(t, err)

	t.Run("Saves image and deletes it", func(t *testing.T) {
		url, err := store.Save(fileHeader(t, "pixel.png", pngPixel), "hotels")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "/uploads/hotels/"))
		assert.True(t, strings.HasSuffix(url, ".png"))

		onDisk := filepath.Join(dir, "hotels", filepath.Base(url))
		_, err = os.Stat(onDisk)
		require.NoError(t, err)

		require.NoError(t, store.Delete(url))
		_, err = os.Stat(onDisk)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Rejects non images", func(t *testing.T) {
		_, err := store.Save(fileHeader(t, "notes.png", []byte("just some text")), "hotels")
		require.Error(t, err)
		assert.Contains(t, apperr.As(err).Fields, "photo")
	})

	t.Run("Delete ignores foreign paths", func(t *testing.T) {
		assert.NoError(t, store.Delete("https://cdn.example.com/x.png"))
		assert.NoError(t, store.Delete("/uploads/../etc/passwd"))
	})
}
