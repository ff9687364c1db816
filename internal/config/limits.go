package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for file and report names.
	// Same as folder names for consistency.
	MaxFileNameLength = 255

	// DefaultMaxUploadBytes caps a single uploaded file (10 MiB).
	DefaultMaxUploadBytes int64 = 10 << 20

	// MaxFolderDepth bounds every upward walk of parent_id.
	// A chain longer than this is treated as corrupt data.
	MaxFolderDepth = 1000

	// MaxFilesPerUpload bounds a single multi-file upload request.
	MaxFilesPerUpload = 50

	// MaxBatchItems bounds a single batch delete.
	MaxBatchItems = 500
)
