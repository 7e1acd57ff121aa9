// ChangeEvent is the central entity of the domain.
package core

import (
	"context"
	"sort"
	"time"
)

// ChangeKind classifies a filesystem notification.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "CREATED"
	ChangeModified ChangeKind = "MODIFIED"
	ChangeRemoved  ChangeKind = "REMOVED"
	// ChangeOther covers metadata-only notifications (chmod etc.) that must
	// never arm the timer.
	ChangeOther ChangeKind = "OTHER"
)

// ChangeEvent is a single raw notification from the event source.
// It is consumed by the filter and discarded; nothing retains it.
type ChangeEvent struct {
	Path      string
	Kind      ChangeKind
	Timestamp time.Time
}

// Relevant reports whether the kind alone qualifies the event to reach the
// debounce timer.
func (e ChangeEvent) Relevant() bool {
	switch e.Kind {
	case ChangeCreated, ChangeModified, ChangeRemoved:
		return true
	}
	return false
}

// Snapshot is the immutable context bound to one firing of the timer.
// It carries paths and settings only — never a live repository handle,
// because repository handles must not cross the debounce boundary.
type Snapshot struct {
	RepoPath            string
	AutoPush            bool
	SSHKey              string
	UseCredentialHelper bool
}

// Handler processes one Snapshot after a quiet period elapses.
// It is the capability boundary between the timer and the commit
// orchestrator, so the timer can be tested with a mock.
type Handler interface {
	Handle(ctx context.Context, snap Snapshot) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, snap Snapshot) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, snap Snapshot) error {
	return f(ctx, snap)
}

// ChangeSet groups changed paths by status. It is derived transiently from
// the working-tree status for message synthesis and is not persisted.
type ChangeSet struct {
	Added    []string
	Modified []string
	Deleted  []string
}

// Empty reports whether a firing is a no-op (quiet period elapsed with no
// net change, e.g. a file was modified and then reverted).
func (c ChangeSet) Empty() bool {
	return len(c.Added) == 0 && len(c.Modified) == 0 && len(c.Deleted) == 0
}

// Len returns the total number of changed paths.
func (c ChangeSet) Len() int {
	return len(c.Added) + len(c.Modified) + len(c.Deleted)
}

// Sort orders each group lexicographically so identical change sets always
// render identical commit messages.
func (c *ChangeSet) Sort() {
	sort.Strings(c.Added)
	sort.Strings(c.Modified)
	sort.Strings(c.Deleted)
}
