package handler

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"clientportal/internal/storage"
)

// servedBlob describes a stored object about to be streamed to the client
type servedBlob struct {
	name        string
	contentType string
	size        int64
	inline      bool
}

// serveBlob streams rc with headers for a download (attachment) or a
// preview (inline). rc is always closed.
func serveBlob(w http.ResponseWriter, logger *slog.Logger, rc io.ReadCloser, b servedBlob) {
	defer rc.Close()

	disposition := "attachment"
	if b.inline {
		disposition = "inline"
	}

	h := w.Header()
	h.Set("Content-Type", storage.ContentTypeFor(b.contentType, b.name))
	h.Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": b.name}))
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cache-Control", "private, no-store")
	if b.size > 0 {
		h.Set("Content-Length", strconv.FormatInt(b.size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		// Headers are already out; all that is left is to log
		logger.Warn("blob stream interrupted", "name", b.name, "error", err)
	}
}
