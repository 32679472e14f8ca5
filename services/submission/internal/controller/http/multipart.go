package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"picboard/pkg/upload"

	"github.com/gin-gonic/gin"
)

// readFile loads an uploaded part into memory.
func readFile(fh *multipart.FileHeader) (*upload.File, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}

	return &upload.File{
		Name:        filepath.Base(fh.Filename),
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// formFiles returns the files sent under any of the given field names, in
// the order the client sent them. A request without a multipart body has none.
// More than limit files fail with upload.ErrTooManyFiles before any is read;
// a limit of zero or less means no cap.
func formFiles(c *gin.Context, limit int, fields ...string) ([]*upload.File, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var headers []*multipart.FileHeader
	for _, field := range fields {
		headers = append(headers, form.File[field]...)
	}
	if limit > 0 && len(headers) > limit {
		return nil, fmt.Errorf("%w: %d sent, limit is %d", upload.ErrTooManyFiles, len(headers), limit)
	}

	files := make([]*upload.File, 0, len(headers))
	for _, fh := range headers {
		file, err := readFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}
