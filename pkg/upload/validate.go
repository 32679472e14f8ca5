package upload

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

const DefaultMaxFileSize int64 = 10 * 1024 * 1024

var AllowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".svg":  true,
	".avif": true,
}

// Policy describes which files are accepted as images.
type Policy struct {
	MaxFileSize int64
	// MaxFiles caps one multiple image selection. Zero means no cap.
	MaxFiles int
}

// CheckCount rejects a selection of more than MaxFiles files.
func (p Policy) CheckCount(n int) error {
	if p.MaxFiles > 0 && n > p.MaxFiles {
		return fmt.Errorf("%w: %d selected, limit is %d", ErrTooManyFiles, n, p.MaxFiles)
	}
	return nil
}

// Check validates a single file. A missing content type is sniffed from the data
// and written back to the file.
func (p Policy) Check(f *File) error {
	if f == nil || f.Size() == 0 {
		return ErrEmptyFile
	}

	maxSize := p.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if f.Size() > maxSize {
		return fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrFileTooLarge, f.Name, f.Size(), maxSize)
	}

	if f.ContentType == "" || f.ContentType == "application/octet-stream" {
		f.ContentType = http.DetectContentType(f.Data)
	}
	if !strings.HasPrefix(f.ContentType, "image/") {
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, f.Name, f.ContentType)
	}

	ext := strings.ToLower(filepath.Ext(f.Name))
	if !AllowedExtensions[ext] {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, f.Name)
	}

	return nil
}
