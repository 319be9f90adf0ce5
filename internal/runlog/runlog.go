// Package runlog persists the flat-file state of the monitor: an
// append-only human-readable event log and the recorded cost history
// that backs the run-over-run increase comparison.
package runlog

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// RunLog appends timestamped events to a human-readable log file
type RunLog struct {
	mu   sync.Mutex
	path string
}

// NewRunLog creates an event log at path
func NewRunLog(path string) *RunLog {
	return &RunLog{path: path}
}

// Append writes one timestamped event line. The file is append-only;
// nothing ever rewrites or truncates it.
func (l *RunLog) Append(event string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s %s\n", time.Now().UTC().Format(time.RFC3339), event); err != nil {
		return fmt.Errorf("failed to append run log: %w", err)
	}
	return nil
}
