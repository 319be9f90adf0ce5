package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/vigilops/costwatch/internal/domain/alert"
)

// MemStore is an in-memory ledger store used in tests and dry runs
type MemStore struct {
	mu      sync.Mutex
	entries map[alert.Category]time.Time
}

// NewMemStore creates an empty in-memory ledger store
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[alert.Category]time.Time)}
}

func (s *MemStore) Load(ctx context.Context) (map[alert.Category]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[alert.Category]time.Time, len(s.entries))
	for c, t := range s.entries {
		out[c] = t
	}
	return out, nil
}

func (s *MemStore) Record(ctx context.Context, category alert.Category, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[category] = at.UTC()
	return nil
}

func (s *MemStore) WithLock(ctx context.Context, fn func() error) error {
	return fn()
}
