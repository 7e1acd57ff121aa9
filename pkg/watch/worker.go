package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/vigil/pkg/core"
)

// Worker receives raw fsnotify events for a directory tree, applies the
// Filter, and forwards surviving events to the notify callback. It is a
// lifecycle worker so a supervisor can restart it with backoff; losing the
// underlying watch is reported as a failure, not swallowed.
type Worker struct {
	*worker.BaseWorker
	root      string
	filter    *Filter
	notify    func(core.ChangeEvent)
	onFailure func(error)
	logger    *slog.Logger
	watcher   *fsnotify.Watcher
	cancel    context.CancelFunc
}

// NewWorker creates a watch worker rooted at root. notify is called once per
// event that passes the filter, in arrival order. onFailure (optional) is
// called when the event loop exits abnormally, before the supervisor sees
// the failure.
func NewWorker(root string, filter *Filter, notify func(core.ChangeEvent), onFailure func(error), logger *slog.Logger) *Worker {
	return &Worker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		root:       root,
		filter:     filter,
		notify:     notify,
		onFailure:  onFailure,
		logger:     logger,
	}
}

// Start begins watching the tree recursively.
func (w *Worker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := addRecursive(watcher, w.root); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

// Stop shuts down the event loop.
func (w *Worker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

// State exports the worker state for supervision.
func (w *Worker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

// run is the main event loop.
func (w *Worker) run(ctx context.Context) (err error) {
	// Declared first so it observes the error a recovered panic produces.
	defer func() {
		if err != nil && w.onFailure != nil {
			w.onFailure(err)
		}
	}()
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.logger != nil {
				if w.logger.Enabled(ctx, slog.LevelDebug) {
					w.logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
				} else {
					w.logger.Error("watcher panic", "error", err)
				}
			}
		}
	}()
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case raw, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return core.ErrWatchLost
			}
			w.handleEvent(raw)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return core.ErrWatchLost
			}
			if w.logger != nil {
				w.logger.Error("fsnotify error", "error", wErr)
			}
		}
	}
}

func (w *Worker) handleEvent(raw fsnotify.Event) {
	event := core.ChangeEvent{
		Path:      raw.Name,
		Kind:      mapOp(raw.Op),
		Timestamp: time.Now(),
	}

	if w.logger != nil {
		w.logger.Debug("event received", "path", raw.Name, "kind", event.Kind)
	}

	if !w.filter.Pass(event) {
		return
	}

	// New directories must join the watch before their contents change
	// unobserved. fsnotify does not watch recursively on its own.
	if event.Kind == core.ChangeCreated {
		if info, err := os.Stat(raw.Name); err == nil && info.IsDir() {
			if err := addRecursive(w.watcher, raw.Name); err != nil && w.logger != nil {
				w.logger.Warn("failed to watch new directory", "path", raw.Name, "error", err)
			}
		}
	}

	w.notify(event)
}

// mapOp translates an fsnotify operation to a domain change kind. Renames
// surface as removals: the new name arrives as its own create event.
func mapOp(op fsnotify.Op) core.ChangeKind {
	switch {
	case op.Has(fsnotify.Create):
		return core.ChangeCreated
	case op.Has(fsnotify.Write):
		return core.ChangeModified
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return core.ChangeRemoved
	default:
		return core.ChangeOther
	}
}

// addRecursive registers root and every subdirectory with the watcher,
// skipping version-control internals.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
