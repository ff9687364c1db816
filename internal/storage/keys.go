package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Key namespaces
const (
	ProjectPrefix = "projects"
	ReportPrefix  = "reports"
)

// ProjectFileKey builds the storage key for a project file.
// The random segment keeps two uploads with the same name from sharing a blob.
func ProjectFileKey(ownerID, fileName string) string {
	return fmt.Sprintf("%s/%s/%s/%s", ProjectPrefix, ownerID, uuid.NewString(), SafeFilename(fileName))
}

// ReportKey builds the storage key for a report PDF.
func ReportKey(ownerID, fileName string) string {
	return fmt.Sprintf("%s/%s/%s/%s", ReportPrefix, ownerID, uuid.NewString(), SafeFilename(fileName))
}

// OwnerFromKey extracts the owner segment of a namespaced key.
func OwnerFromKey(key string) (string, bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 4 || (parts[0] != ProjectPrefix && parts[0] != ReportPrefix) || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// SafeFilename reduces a client-supplied name to a single path segment.
func SafeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" || name == ".." {
		return "file"
	}
	return name
}
