// Package faillog records file keys whose records could not be upserted.
// The log is the only recovery mechanism for failed batches: operators
// replay the listed files manually.
package faillog

import (
	"fmt"
	"os"
	"sync"
)

// Log is a durable, append-only list of file keys, one per line.
type Log struct {
	mu   sync.Mutex
	path string
}

// New creates a failure log backed by the file at path. The file is created
// on first append.
func New(path string) *Log {
	return &Log{path: path}
}

// Append writes one line per file key and syncs before returning.
func (l *Log) Append(fileKeys ...string) error {
	if len(fileKeys) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open failure log: %w", err)
	}
	defer f.Close()

	for _, key := range fileKeys {
		if _, err := fmt.Fprintln(f, key); err != nil {
			return fmt.Errorf("failed to append to failure log: %w", err)
		}
	}

	return f.Sync()
}
