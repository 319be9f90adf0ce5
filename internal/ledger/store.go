// Package ledger persists the last-fired timestamp of each alert
// category. The file store is the one shared mutable resource between
// overlapping runs, so every read-decide-write sequence happens under
// an exclusive lock.
package ledger

import (
	"context"
	"time"

	"github.com/vigilops/costwatch/internal/domain/alert"
)

// Store is the key-value abstraction behind the cooldown ledger. Tests
// substitute the in-memory implementation for the file-backed one.
type Store interface {
	// Load returns the last-fired timestamp per category. Corrupt or
	// missing state loads as empty: a broken ledger must never
	// suppress alerting.
	Load(ctx context.Context) (map[alert.Category]time.Time, error)

	// Record upserts the last-fired timestamp for a category. Last
	// writer wins; there is no merge.
	Record(ctx context.Context, category alert.Category, at time.Time) error

	// WithLock runs fn while holding the store's exclusive lock,
	// serializing the read-decide-write sequence across processes.
	WithLock(ctx context.Context, fn func() error) error
}
