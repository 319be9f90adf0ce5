package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/vigilops/costwatch/internal/domain/alert"
	"github.com/vigilops/costwatch/internal/pkg/logger"
)

// FileStore persists the ledger as a flat file of
// "category:epoch_seconds" lines, one logical entry per category.
type FileStore struct {
	path   string
	logger *logger.Logger
}

// NewFileStore creates a file-backed ledger store at path
func NewFileStore(path string, log *logger.Logger) *FileStore {
	return &FileStore{path: path, logger: log}
}

// Load reads the ledger file. Duplicate category lines collapse to the
// last value. A missing, unreadable, or corrupt file loads as empty:
// the ledger fails open toward allowing alerts.
func (s *FileStore) Load(ctx context.Context) (map[alert.Category]time.Time, error) {
	entries := make(map[alert.Category]time.Time)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithFields(map[string]interface{}{
				"path": s.path,
			}).ErrorWithErr(err, "Ledger unreadable, treating as empty")
		}
		return entries, nil
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		category, epoch, ok := strings.Cut(line, ":")
		if !ok {
			s.logger.Warnf("Skipping malformed ledger line %q", line)
			continue
		}
		sec, err := strconv.ParseInt(strings.TrimSpace(epoch), 10, 64)
		if err != nil {
			s.logger.Warnf("Skipping ledger line with bad timestamp %q", line)
			continue
		}
		entries[alert.Category(strings.TrimSpace(category))] = time.Unix(sec, 0).UTC()
	}

	return entries, nil
}

// Record upserts the last-fired timestamp for a category and rewrites
// the file atomically. Callers serialize through WithLock.
func (s *FileStore) Record(ctx context.Context, category alert.Category, at time.Time) error {
	entries, err := s.Load(ctx)
	if err != nil {
		return err
	}
	entries[category] = at.UTC()

	categories := make([]alert.Category, 0, len(entries))
	for c := range entries {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	var b strings.Builder
	for _, c := range categories {
		fmt.Fprintf(&b, "%s:%d\n", c, entries[c].Unix())
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".ledger-*")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close ledger: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace ledger: %w", err)
	}

	return nil
}

// WithLock holds an exclusive advisory lock on a sidecar lock file for
// the duration of fn, serializing concurrent invocations on the same
// host.
func (s *FileStore) WithLock(ctx context.Context, fn func() error) error {
	lockPath := s.path + ".lock"

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ledger lock: %w", err)
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("failed to acquire ledger lock: %w", err)
	}
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn()
}
