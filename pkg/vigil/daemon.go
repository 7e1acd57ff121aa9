package vigil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"

	"github.com/aretw0/vigil/pkg/config"
	"github.com/aretw0/vigil/pkg/core"
	"github.com/aretw0/vigil/pkg/debounce"
	"github.com/aretw0/vigil/pkg/git"
	"github.com/aretw0/vigil/pkg/watch"
)

// maxWatchRestarts bounds how often a lost filesystem watch is re-established
// before the daemon gives up and exits so the service unit restarts the
// process.
const maxWatchRestarts = 10

// watchSentry counts permanent watch losses. The supervisor restarts the
// watch worker on failure, but once its restart budget is spent it goes
// quiet; the sentry notices the budget running out and signals that the
// daemon has gone deaf.
type watchSentry struct {
	limit int32
	count int32
	fatal chan error
}

func newWatchSentry(limit int32) *watchSentry {
	return &watchSentry{
		limit: limit,
		fatal: make(chan error, 1),
	}
}

// onFailure is invoked by the watch worker whenever its event loop exits
// abnormally.
func (s *watchSentry) onFailure(err error) {
	if !errors.Is(err, core.ErrWatchLost) {
		return
	}
	if atomic.AddInt32(&s.count, 1) > s.limit {
		select {
		case s.fatal <- err:
		default:
		}
	}
}

// Daemon runs one configured watcher: a supervised filesystem watch feeding
// a debounce timer whose firings commit the watched repository.
type Daemon struct {
	cfg    config.Config
	logger *slog.Logger

	timer   *debounce.Timer
	started time.Time
}

// NewDaemon validates the environment and assembles a daemon for cfg.
func NewDaemon(cfg config.Config, logger *slog.Logger) (*Daemon, error) {
	if !git.IsInstalled() {
		return nil, fmt.Errorf("git is not installed or not in PATH")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Daemon{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Run blocks until ctx is cancelled or the filesystem watch is lost for
// good. The watcher runs under a supervisor so transient failures restart it
// with backoff; once the restart budget is exhausted Run returns an error so
// the service unit restarts the whole process. The debounce timer runs on
// the calling goroutine, so an in-flight commit always completes before Run
// returns.
func (d *Daemon) Run(ctx context.Context) error {
	d.started = time.Now()

	// The snapshot carries paths and settings only. Repository handles are
	// opened fresh inside each firing, never here.
	snap := core.Snapshot{
		RepoPath:            d.cfg.WatchDir,
		AutoPush:            d.cfg.AutoPush,
		SSHKey:              d.cfg.Push.SSHKey,
		UseCredentialHelper: d.cfg.Push.UseCredentialHelper,
	}

	d.timer = debounce.New(d.cfg.Delay(), NewCommitter(d.logger), d.logger)

	filter := watch.NewFilter(
		d.cfg.WatchDir,
		d.cfg.IgnorePatterns,
		git.NewClient(d.cfg.WatchDir, d.logger),
		d.logger,
	)

	notify := func(event core.ChangeEvent) {
		if d.logger != nil {
			d.logger.Debug("change detected", "path", event.Path, "kind", event.Kind)
		}
		d.timer.Reset(snap)
	}

	sentry := newWatchSentry(maxWatchRestarts)

	spec := supervisor.Spec{
		Name: "fs-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			return watch.NewWorker(d.cfg.WatchDir, filter, notify, sentry.onFailure, d.logger), nil
		},
		Backoff: supervisor.Backoff{
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     30 * time.Second,
			Multiplier:      2,
			ResetDuration:   time.Minute,
			MaxRestarts:     maxWatchRestarts,
			MaxDuration:     10 * time.Minute,
		},
		RestartPolicy: supervisor.RestartOnFailure,
	}

	sup := supervisor.New("vigil-"+d.cfg.Name, supervisor.StrategyOneForOne, spec)
	if err := sup.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sup.Stop(stopCtx); err != nil && d.logger != nil {
			d.logger.Warn("watcher did not stop cleanly", "error", err)
		}
	}()

	if d.logger != nil {
		d.logger.Info("watching",
			"name", d.cfg.Name,
			"dir", d.cfg.WatchDir,
			"delay", d.cfg.Delay(),
			"auto_push", d.cfg.AutoPush,
		)
	}

	// A permanent watch loss cancels the timer's context. The timer finishes
	// any in-flight firing before returning, so the last commit still lands.
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	errCh := make(chan error, 1)
	go func() {
		select {
		case err := <-sentry.fatal:
			errCh <- err
			cancelRun()
		case <-runCtx.Done():
		}
	}()

	_ = d.timer.Run(runCtx)

	select {
	case err := <-errCh:
		return fmt.Errorf("event watch lost permanently: %w", err)
	default:
		return nil
	}
}

// DaemonState exposes internal state for observability.
type DaemonState struct {
	Name     string    `json:"name"`
	WatchDir string    `json:"watch_dir"`
	Started  time.Time `json:"started,omitempty"`
	Timer    any       `json:"timer,omitempty"`
}

// State implements introspection.Introspectable.
func (d *Daemon) State() any {
	state := DaemonState{
		Name:     d.cfg.Name,
		WatchDir: d.cfg.WatchDir,
		Started:  d.started,
	}
	if d.timer != nil {
		state.Timer = d.timer.State()
	}
	return state
}

// ComponentType implements introspection.Component.
func (d *Daemon) ComponentType() string {
	return "watcher-daemon"
}

var _ introspection.Introspectable = (*Daemon)(nil)
var _ introspection.Component = (*Daemon)(nil)
