package billing

import "time"

// Engine runs the payout computations against a Store. Construct one per
// process with NewEngine; there is no ambient shared instance.
type Engine struct {
	store Store
	now   func() time.Time
}

// NewEngine creates an engine using the wall clock.
func NewEngine(store Store) *Engine {
	return NewEngineWithClock(store, time.Now)
}

// NewEngineWithClock creates an engine with an injected clock. The
// eligibility gate's temporal rule depends on "now", so tests pin it.
func NewEngineWithClock(store Store, now func() time.Time) *Engine {
	return &Engine{store: store, now: now}
}
