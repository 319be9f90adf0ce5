package runlog

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// History records the estimated total of each run as
// "epoch_seconds total" lines. The cost-increase alert compares the
// current total against only the most recent recorded run; there is no
// smoothing.
type History struct {
	mu   sync.Mutex
	path string
}

// NewHistory creates a cost history file at path
func NewHistory(path string) *History {
	return &History{path: path}
}

// RecordTotal appends one run's estimated daily total
func (h *History) RecordTotal(at time.Time, total decimal.Decimal) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open cost history: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d %s\n", at.Unix(), total.StringFixed(2)); err != nil {
		return fmt.Errorf("failed to append cost history: %w", err)
	}
	return nil
}

// LastTotal returns the most recent recorded total. A missing file or
// a file with no parseable entries reports ok=false; corrupt lines are
// skipped, not fatal.
func (h *History) LastTotal() (total decimal.Decimal, at time.Time, ok bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return decimal.Zero, time.Time{}, false, nil
		}
		return decimal.Zero, time.Time{}, false, fmt.Errorf("failed to read cost history: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		epochStr, totalStr, found := strings.Cut(line, " ")
		if !found {
			continue
		}
		sec, perr := strconv.ParseInt(epochStr, 10, 64)
		if perr != nil {
			continue
		}
		value, perr := decimal.NewFromString(strings.TrimSpace(totalStr))
		if perr != nil {
			continue
		}
		return value, time.Unix(sec, 0).UTC(), true, nil
	}

	return decimal.Zero, time.Time{}, false, nil
}
