// Package vigil turns directories into self-committing git repositories.
//
// A watcher observes a directory tree for changes, waits for a configurable
// quiet period, then stages and commits everything that changed, optionally
// pushing to a remote. Bursts of filesystem activity collapse into a single
// commit: every change resets the countdown, and only an undisturbed quiet
// period produces one.
//
// The package layering follows the data path:
//
//   - pkg/watch observes the filesystem and filters noise
//   - pkg/debounce collapses bursts into single firings
//   - pkg/vigil orchestrates the commit pipeline per firing
//   - pkg/git wraps the git binary
//   - pkg/config describes watchers
//   - internal/service keeps daemons running via systemd user units
//
// The root package is a thin facade for embedding a watcher in another
// program; the vigil command is the usual entry point.
package vigil
