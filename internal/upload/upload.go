package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"storefront-api/internal/apperrors"
)

// Saver guarda imágenes subidas en un directorio local servido en /uploads
type Saver struct {
	Dir      string
	MaxBytes int64
	now      func() time.Time
	create   func(path string) (io.WriteCloser, error)
}

func createFile(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func NewSaver(dir string, maxBytes int64) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Saver{Dir: dir, MaxBytes: maxBytes, now: time.Now, create: createFile}, nil
}

// Save valida tamaño y contenido (solo image/*) y devuelve el nombre final.
// El tipo se detecta por contenido, no por la extensión enviada
func (s *Saver) Save(field string, header *multipart.FileHeader) (string, error) {
	if s.MaxBytes > 0 && header.Size > s.MaxBytes {
		return "", apperrors.Validation(field, "File too large (max %d bytes)", s.MaxBytes)
	}

	src, err := header.Open()
	if err != nil {
		return "", apperrors.Internal("open upload", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", apperrors.Internal("detect upload type", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", apperrors.Validation(field, "Only image files are allowed")
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", apperrors.Internal("rewind upload", err)
	}

	name := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), uuid.NewString(), mtype.Extension())
	path := filepath.Join(s.Dir, name)
	dst, err := s.create(path)
	if err != nil {
		return "", apperrors.Internal("create upload file", err)
	}

	_, err = io.Copy(dst, src)
	// Close puede reportar la escritura fallida
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", apperrors.Internal("write upload file", err)
	}
	return name, nil
}
