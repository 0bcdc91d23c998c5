package logdb

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileDB appends entries to a JSON Lines file.
// The file is opened, appended and closed on every SendLogs call.
type FileDB struct {
	*BaseLogDB
	Path string
	out  io.Writer
}

// NewFileDB creates a new FileDB for path
func NewFileDB(path string, options Options) (*FileDB, error) {
	if path == "" {
		return nil, errors.New("file destination requires a path")
	}

	return &FileDB{
		BaseLogDB: NewBaseLogDB("", options),
		Path:      path,
		out:       options.out(),
	}, nil
}

// Initialize creates the parent directory when it is missing
func (db *FileDB) Initialize() error {
	dir := filepath.Dir(db.Path)
	if _, err := os.Stat(dir); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat log directory %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	fmt.Fprintf(db.out, "Created directory: %s\n", dir)
	return nil
}

// Close is a no-op; no handle is held between writes
func (db *FileDB) Close() error {
	return nil
}

// Name returns the destination name
func (db *FileDB) Name() string {
	return KindFile
}

// FormatPayload formats log entries as JSON Lines
func (db *FileDB) FormatPayload(logs []LogEntry) (string, string) {
	data, err := encodeLines(logs)
	if err != nil {
		return "", "application/x-ndjson"
	}
	return string(data), "application/x-ndjson"
}

// SendLogs appends the entries to the file, one JSON object per line
func (db *FileDB) SendLogs(logs []LogEntry) error {
	if len(logs) == 0 {
		return nil
	}

	data, err := encodeLines(logs)
	if err != nil {
		return fmt.Errorf("failed to encode log entries: %w", err)
	}

	file, err := os.OpenFile(db.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		db.IncrementMetric("failed_writes", 1)
		return fmt.Errorf("failed to open log file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		db.IncrementMetric("failed_writes", 1)
		return fmt.Errorf("failed to write log file: %w", err)
	}
	if err := file.Close(); err != nil {
		db.IncrementMetric("failed_writes", 1)
		return fmt.Errorf("failed to close log file: %w", err)
	}

	db.IncrementMetric("successful_writes", 1)
	db.IncrementMetric("total_logs", float64(len(logs)))
	return nil
}
