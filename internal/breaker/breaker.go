// Package breaker guards a single flaky dependency call site, fast-failing
// callers once consecutive failures pass a threshold and re-admitting a
// single trial call after a cool-down.
package breaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the breaker short-circuits a call without
// touching the dependency. Callers can tell "the dependency failed" apart
// from "we declined to even try".
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Config defines breaker behavior.
type Config struct {
	FailureThreshold   int           // consecutive failures before opening
	OpenDuration       time.Duration // how long calls are short-circuited
	FailureResetWindow time.Duration // age after which a failure streak is stale
}

// DefaultConfig provides sensible defaults.
var DefaultConfig = Config{
	FailureThreshold:   5,
	OpenDuration:       60 * time.Second,
	FailureResetWindow: 5 * time.Minute,
}

// Stats is a read-only snapshot of breaker state.
type Stats struct {
	ConsecutiveFailures int
	Open                bool
	LastFailureAt       time.Time
	OpenedAt            time.Time
}

// Breaker tracks consecutive failures of one guarded call site. State is
// owned exclusively by the instance and mutated only through Do.
type Breaker struct {
	cfg Config
	now func() time.Time

	mu                  sync.Mutex
	consecutiveFailures int
	lastFailureAt       time.Time
	openedAt            time.Time
}

// New creates a breaker, filling zero config fields from DefaultConfig.
func New(cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = DefaultConfig.FailureThreshold
	}
	if cfg.OpenDuration <= 0 {
		cfg.OpenDuration = DefaultConfig.OpenDuration
	}
	if cfg.FailureResetWindow <= 0 {
		cfg.FailureResetWindow = DefaultConfig.FailureResetWindow
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// Do runs fn unless the breaker is open, in which case it returns
// ErrCircuitOpen immediately and fn is never invoked. The first call at or
// after the cool-down is the trial call: success closes the breaker, failure
// restarts the cool-down.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err)
	return err
}

// Execute runs fn through b and returns its value, failing fast with
// ErrCircuitOpen when short-circuited.
func Execute[R any](ctx context.Context, b *Breaker, fn func(context.Context) (R, error)) (R, error) {
	var out R
	err := b.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// Stats returns a snapshot of the current state.
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		ConsecutiveFailures: b.consecutiveFailures,
		Open:                b.openUnsafe(),
		LastFailureAt:       b.lastFailureAt,
		OpenedAt:            b.openedAt,
	}
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.openUnsafe() {
		return ErrCircuitOpen
	}
	return nil
}

func (b *Breaker) openUnsafe() bool {
	return !b.openedAt.IsZero() && b.now().Sub(b.openedAt) < b.cfg.OpenDuration
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()

	if err != nil {
		b.consecutiveFailures++
		b.lastFailureAt = now
		if b.consecutiveFailures >= b.cfg.FailureThreshold {
			b.openedAt = now
		}
		return
	}

	if !b.openedAt.IsZero() {
		// Trial call out of the open state succeeded.
		b.openedAt = time.Time{}
		b.consecutiveFailures = 0
		return
	}

	// A success only clears a failure streak old enough to be stale; one
	// lucky call during an ongoing incident must not mask the incident.
	if b.lastFailureAt.IsZero() || now.Sub(b.lastFailureAt) >= b.cfg.FailureResetWindow {
		b.consecutiveFailures = 0
	}
}
