package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// NewLogger builds the process logger: JSON on stdout, tee'd into a
// timestamped file under LogDir when one is configured.
// The returned close func is never nil.
func NewLogger(cfg *Config) (*slog.Logger, func(), error) {
	var out io.Writer = os.Stdout
	closeFn := func() {}

	if cfg.LogDir != "" {
		f, err := SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			return nil, closeFn, err
		}
		out = io.MultiWriter(os.Stdout, f)
		closeFn = func() { f.Close() }
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	return logger, closeFn, nil
}

// SetupLogFile creates a new timestamped log file and cleans up old files.
// Returns the file handle (caller must close) or error.
func SetupLogFile(dir string, maxFiles int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("server-%s.log",
		time.Now().Format("2006-01-02T15-04-05")))

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	if maxFiles < 1 {
		maxFiles = 1
	}
	if err := cleanupOldLogs(dir, maxFiles); err != nil {
		// Logging still works with stale files around
		fmt.Fprintf(os.Stderr, "warning: failed to cleanup old logs: %v\n", err)
	}

	return f, nil
}

// cleanupOldLogs removes oldest log files when count exceeds maxFiles.
func cleanupOldLogs(dir string, maxFiles int) error {
	files, err := filepath.Glob(filepath.Join(dir, "server-*.log"))
	if err != nil {
		return err
	}
	if len(files) <= maxFiles {
		return nil
	}

	// Timestamped names sort chronologically
	sort.Strings(files)

	for _, name := range files[:len(files)-maxFiles] {
		if err := os.Remove(name); err != nil {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}
