// Package debounce implements the trailing-edge debounce timer that turns a
// burst of change notifications into at most one handler invocation per
// quiet period.
//
// The timer is an explicit state machine: it is either idle (no pending
// firing) or armed (a deadline and a generation counter). Every Reset bumps
// the generation, so an evaluation that wakes late can detect it was
// superseded and exit without firing. This replaces ad-hoc condition
// variable signaling with state that tests can reason about.
package debounce

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/vigil/pkg/core"
)

// Timer delays handler execution until a configurable quiet period has
// passed since the last Reset. Only the most recently armed deadline may
// ever execute its handler.
type Timer struct {
	delay   time.Duration
	handler core.Handler
	logger  *slog.Logger

	mu         sync.Mutex
	armed      bool
	generation uint64
	deadline   time.Time
	pending    core.Snapshot

	firings    uint64
	lastFiring time.Time

	// kick wakes the evaluation loop after a Reset. Buffered by one: the
	// loop re-reads the armed state on every pass, so coalescing concurrent
	// kicks is safe.
	kick chan struct{}
}

// New creates a Timer that invokes handler after delay of quiet.
// The timer does nothing until Run is started.
func New(delay time.Duration, handler core.Handler, logger *slog.Logger) *Timer {
	return &Timer{
		delay:   delay,
		handler: handler,
		logger:  logger,
		kick:    make(chan struct{}, 1),
	}
}

// Reset arms the timer with a fresh deadline (now + delay), invalidating any
// previously scheduled firing even if its deadline has already elapsed
// concurrently with this call. Safe for concurrent use from multiple
// event-source goroutines.
func (t *Timer) Reset(snap core.Snapshot) {
	t.mu.Lock()
	t.generation++
	t.armed = true
	t.deadline = time.Now().Add(t.delay)
	t.pending = snap
	t.mu.Unlock()

	select {
	case t.kick <- struct{}{}:
	default:
	}
}

// Run is the evaluation loop. It blocks until ctx is cancelled, sleeping
// while idle, waiting out armed deadlines, and invoking the handler
// synchronously when a deadline is reached undisturbed. An in-flight handler
// always runs to completion before Run returns: commits must not be left
// half-written on shutdown.
func (t *Timer) Run(ctx context.Context) error {
	for {
		t.mu.Lock()
		if !t.armed {
			t.mu.Unlock()
			select {
			case <-ctx.Done():
				return nil
			case <-t.kick:
				continue
			}
		}
		gen := t.generation
		wait := time.Until(t.deadline)
		t.mu.Unlock()

		if wait > 0 {
			sleep := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				sleep.Stop()
				return nil
			case <-t.kick:
				// Re-armed while sleeping; re-evaluate the fresh deadline.
				sleep.Stop()
				continue
			case <-sleep.C:
			}
		}

		t.mu.Lock()
		if !t.armed || t.generation != gen {
			// A reset won the race against the deadline; the freshest reset
			// always wins.
			t.mu.Unlock()
			continue
		}
		t.armed = false
		snap := t.pending
		t.pending = core.Snapshot{}
		t.firings++
		t.lastFiring = time.Now()
		t.mu.Unlock()

		if err := t.handler.Handle(ctx, snap); err != nil {
			if t.logger != nil {
				t.logger.Error("debounce handler failed", "repo", snap.RepoPath, "error", err)
			}
		}
	}
}

// TimerState exposes internal state for observability.
type TimerState struct {
	Armed      bool      `json:"armed"`
	Generation uint64    `json:"generation"`
	Deadline   time.Time `json:"deadline,omitempty"`
	Firings    uint64    `json:"firings"`
	LastFiring time.Time `json:"last_firing,omitempty"`
}

// State implements introspection.Introspectable.
func (t *Timer) State() any {
	t.mu.Lock()
	defer t.mu.Unlock()

	return TimerState{
		Armed:      t.armed,
		Generation: t.generation,
		Deadline:   t.deadline,
		Firings:    t.firings,
		LastFiring: t.lastFiring,
	}
}

// ComponentType implements introspection.Component.
func (t *Timer) ComponentType() string {
	return "debounce-timer"
}

var _ introspection.Introspectable = (*Timer)(nil)
var _ introspection.Component = (*Timer)(nil)
