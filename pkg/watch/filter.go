// Package watch turns raw filesystem notifications into debounce-timer
// resets. It owns the fsnotify worker and the event filter that keeps noise
// (metadata events, git-internal churn, ignored paths) away from the timer.
package watch

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/vigil/pkg/core"
)

// IgnoreChecker evaluates repository ignore rules for a path.
// *git.Client satisfies it; tests substitute stubs.
type IgnoreChecker interface {
	CheckIgnore(path string) (bool, error)
}

// Filter decides whether a change notification may reset the debounce
// timer. It is a pure predicate with no side effects.
type Filter struct {
	root     string
	patterns []string
	ignores  IgnoreChecker
	logger   *slog.Logger
}

// NewFilter creates a filter for a watch root. patterns are doublestar globs
// from the watcher configuration, matched against the path relative to root.
func NewFilter(root string, patterns []string, ignores IgnoreChecker, logger *slog.Logger) *Filter {
	return &Filter{
		root:     root,
		patterns: patterns,
		ignores:  ignores,
		logger:   logger,
	}
}

// Pass applies the filter rules in order:
//
//  1. drop events that are not create/modify/remove;
//  2. drop anything inside a version-control internal directory, so the
//     tool's own commits cannot feed back into the timer;
//  3. drop paths matching the configured ignore globs;
//  4. drop paths the repository's ignore rules exclude — failing open when
//     the rules cannot be evaluated (e.g. repository not initialized yet),
//     because silently dropping real changes is worse than a spurious reset.
func (f *Filter) Pass(event core.ChangeEvent) bool {
	if !event.Relevant() {
		return false
	}

	rel, err := filepath.Rel(f.root, event.Path)
	if err != nil || strings.HasPrefix(rel, "..") {
		// Outside the watch root; nothing we track.
		return false
	}
	rel = filepath.ToSlash(rel)

	if insideGitDir(rel) {
		return false
	}

	for _, pattern := range f.patterns {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			if f.logger != nil {
				f.logger.Warn("invalid ignore pattern", "pattern", pattern, "error", err)
			}
			continue
		}
		if matched {
			return false
		}
	}

	if f.ignores != nil {
		ignored, err := f.ignores.CheckIgnore(event.Path)
		if err != nil {
			if f.logger != nil {
				f.logger.Debug("ignore evaluation failed, treating event as relevant", "path", event.Path, "error", err)
			}
			return true
		}
		if ignored {
			return false
		}
	}

	return true
}

// insideGitDir reports whether any component of the slash-separated relative
// path is a .git directory. Nested repositories carry their own .git trees,
// which are just as much tool side effects as the parent's.
func insideGitDir(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if part == ".git" {
			return true
		}
	}
	return false
}
