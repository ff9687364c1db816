package storage

import (
	"bytes"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how much of a stream is read to detect its type
const sniffLen = 3072

// Sniff detects the content type of r from its leading bytes and returns a
// reader that still yields the full stream.
func Sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	return mt.String(), io.MultiReader(bytes.NewReader(head), r), nil
}

// IsPDF reports whether a detected content type is a PDF.
func IsPDF(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/pdf"
}

// ContentTypeFor picks the type to serve a stored blob with. A stored
// generic type falls back to the file extension.
func ContentTypeFor(stored, fileName string) string {
	if stored != "" && !strings.HasPrefix(stored, "application/octet-stream") {
		return stored
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); byExt != "" {
		return byExt
	}
	if stored != "" {
		return stored
	}
	return "application/octet-stream"
}
