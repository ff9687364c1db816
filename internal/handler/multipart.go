package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"clientportal/internal/httputil"
)

// multipartMemory is how much of a form is buffered before spilling to disk
const multipartMemory = 32 << 20

// parseMultipart parses a multipart body capped at limit bytes and writes
// the error response itself on failure.
func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request exceeds %d bytes", tooLarge.Limit))
			return false
		}
		httputil.RespondError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return false
	}
	return true
}

// formValue returns a trimmed multipart field or nil when blank
func formValue(r *http.Request, name string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values := r.MultipartForm.Value[name]
	if len(values) == 0 || values[0] == "" {
		return nil
	}
	v := values[0]
	return &v
}

// openParts opens every uploaded part, closing the ones already opened on
// failure. The caller closes the returned files.
func openParts(headers []*multipart.FileHeader) ([]multipart.File, error) {
	files := make([]multipart.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeParts(files)
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		files = append(files, f)
	}
	return files, nil
}

func closeParts(files []multipart.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
