package service

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	_ "golang.org/x/image/webp"
)

var (
	ErrUploadMissing     = errors.New("no file provided")
	ErrUploadInvalidType = errors.New("invalid file type")
	ErrUploadNotImage    = errors.New("file is not a readable image")
)

var allowedImageExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"webp": {},
}

// StoredImage describes an uploaded image on disk.
type StoredImage struct {
	Filename string
	URL      string
	Width    int
	Height   int
}

// UploadService stores cover images, author photos and editor images.
type UploadService struct {
	dir     string
	urlPath string
	now     func() time.Time
}

// NewUploadService creates an UploadService writing into dir and serving from urlPath.
func NewUploadService(dir, urlPath string) *UploadService {
	return &UploadService{dir: dir, urlPath: urlPath, now: time.Now}
}

// WithClock overrides the timestamp source used for filename prefixes.
func (s *UploadService) WithClock(now func() time.Time) *UploadService {
	s.now = now
	return s
}

// AllowedImage reports whether filename carries a permitted image extension.
func AllowedImage(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	_, ok := allowedImageExtensions[ext]
	return ok
}

// SecureFilename reduces a client filename to a safe ASCII base name.
func SecureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

// Save validates the extension and image header, then writes the file as
// YYYYMMDD_HHMMSS_<name>.
func (s *UploadService) Save(header *multipart.FileHeader) (*StoredImage, error) {
	if header == nil || header.Filename == "" {
		return nil, ErrUploadMissing
	}
	if !AllowedImage(header.Filename) {
		return nil, ErrUploadInvalidType
	}

	name := SecureFilename(header.Filename)
	if !AllowedImage(name) {
		return nil, ErrUploadInvalidType
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, ErrUploadNotImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	filename := fmt.Sprintf("%s_%s", s.now().Format("20060102_150405"), name)
	dst, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return nil, fmt.Errorf("write upload file: %w", err)
	}

	return &StoredImage{
		Filename: filename,
		URL:      s.URL(filename),
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

// URL maps a stored filename to its public path.
func (s *UploadService) URL(filename string) string {
	return path.Join("/", s.urlPath, filename)
}
