package debounce

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/vigil/pkg/core"
)

// countingHandler records firings on a channel so tests can wait for them.
type countingHandler struct {
	count int64
	fired chan core.Snapshot
}

func newCountingHandler() *countingHandler {
	return &countingHandler{fired: make(chan core.Snapshot, 16)}
}

func (h *countingHandler) Handle(_ context.Context, snap core.Snapshot) error {
	atomic.AddInt64(&h.count, 1)
	h.fired <- snap
	return nil
}

func (h *countingHandler) firings() int64 {
	return atomic.LoadInt64(&h.count)
}

func runTimer(t *testing.T, timer *Timer) context.CancelFunc {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = timer.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("timer did not stop")
		}
	})
	return cancel
}

func TestTimer_FiresAfterQuietPeriod(t *testing.T) {
	handler := newCountingHandler()
	timer := New(50*time.Millisecond, handler, nil)
	runTimer(t, timer)

	timer.Reset(core.Snapshot{RepoPath: "/tmp/repo"})

	select {
	case snap := <-handler.fired:
		if snap.RepoPath != "/tmp/repo" {
			t.Errorf("RepoPath = %q, want /tmp/repo", snap.RepoPath)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
}

func TestTimer_ResetPostponesFiring(t *testing.T) {
	handler := newCountingHandler()
	timer := New(250*time.Millisecond, handler, nil)
	runTimer(t, timer)

	timer.Reset(core.Snapshot{})
	time.Sleep(150 * time.Millisecond)
	timer.Reset(core.Snapshot{})
	time.Sleep(150 * time.Millisecond)

	// 300ms after the first reset, but only 150ms after the second: the
	// postponed deadline must not have fired yet.
	if got := handler.firings(); got != 0 {
		t.Fatalf("fired %d times before the postponed deadline", got)
	}

	select {
	case <-handler.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired after postponement")
	}
}

func TestTimer_BurstCollapsesToOneFiring(t *testing.T) {
	handler := newCountingHandler()
	timer := New(100*time.Millisecond, handler, nil)
	runTimer(t, timer)

	for i := 0; i < 50; i++ {
		timer.Reset(core.Snapshot{})
		time.Sleep(time.Millisecond)
	}

	select {
	case <-handler.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}

	// Allow any spurious extra firing to surface.
	time.Sleep(200 * time.Millisecond)
	if got := handler.firings(); got != 1 {
		t.Errorf("fired %d times, want 1", got)
	}
}

func TestTimer_LatestSnapshotWins(t *testing.T) {
	handler := newCountingHandler()
	timer := New(50*time.Millisecond, handler, nil)
	runTimer(t, timer)

	timer.Reset(core.Snapshot{RepoPath: "/stale"})
	timer.Reset(core.Snapshot{RepoPath: "/fresh"})

	select {
	case snap := <-handler.fired:
		if snap.RepoPath != "/fresh" {
			t.Errorf("RepoPath = %q, want /fresh", snap.RepoPath)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
}

func TestTimer_NoResetNoFiring(t *testing.T) {
	handler := newCountingHandler()
	timer := New(20*time.Millisecond, handler, nil)
	runTimer(t, timer)

	time.Sleep(150 * time.Millisecond)
	if got := handler.firings(); got != 0 {
		t.Errorf("fired %d times without a reset", got)
	}
}

func TestTimer_RearmsAfterFiring(t *testing.T) {
	handler := newCountingHandler()
	timer := New(30*time.Millisecond, handler, nil)
	runTimer(t, timer)

	for i := 0; i < 3; i++ {
		timer.Reset(core.Snapshot{})
		select {
		case <-handler.fired:
		case <-time.After(2 * time.Second):
			t.Fatalf("firing %d never happened", i+1)
		}
	}

	if got := handler.firings(); got != 3 {
		t.Errorf("fired %d times, want 3", got)
	}
}

func TestTimer_HandlerErrorDoesNotStopLoop(t *testing.T) {
	handler := newCountingHandler()
	failing := core.HandlerFunc(func(ctx context.Context, snap core.Snapshot) error {
		_ = handler.Handle(ctx, snap)
		return context.DeadlineExceeded
	})
	timer := New(30*time.Millisecond, failing, nil)
	runTimer(t, timer)

	timer.Reset(core.Snapshot{})
	select {
	case <-handler.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("first firing never happened")
	}

	timer.Reset(core.Snapshot{})
	select {
	case <-handler.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer stopped after a handler error")
	}
}

func TestTimer_State(t *testing.T) {
	handler := newCountingHandler()
	timer := New(30*time.Millisecond, handler, nil)

	state, ok := timer.State().(TimerState)
	if !ok {
		t.Fatalf("State() returned %T, want TimerState", timer.State())
	}
	if state.Armed || state.Firings != 0 {
		t.Errorf("fresh timer state = %+v", state)
	}

	runTimer(t, timer)
	timer.Reset(core.Snapshot{})

	select {
	case <-handler.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}

	state = timer.State().(TimerState)
	if state.Firings != 1 {
		t.Errorf("Firings = %d, want 1", state.Firings)
	}
}
