package alerting

import (
	"time"

	"github.com/vigilops/costwatch/internal/domain/alert"
)

// Cooldown enforces the minimum interval between two alerts of the
// same category.
type Cooldown struct {
	window time.Duration
}

// NewCooldown creates a cooldown policy. A non-positive window falls
// back to the default 4-hour interval.
func NewCooldown(window time.Duration) Cooldown {
	if window <= 0 {
		window = alert.DefaultCooldown
	}
	return Cooldown{window: window}
}

// Window returns the configured cooldown interval
func (c Cooldown) Window() time.Duration {
	return c.window
}

// ShouldFire reports whether a category may fire at now, given the
// ledger's last-fired entries. A category with no entry always may.
// The comparison is strict: exactly one window elapsed does not yet
// permit firing again.
func (c Cooldown) ShouldFire(category alert.Category, now time.Time, entries map[alert.Category]time.Time) bool {
	last, ok := entries[category]
	if !ok {
		return true
	}
	return now.Sub(last) > c.window
}
