// Package vigil wires the watch, debounce and git layers into the running
// daemon. It owns the commit pipeline that fires after each quiet period.
package vigil

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/vigil/pkg/core"
	"github.com/aretw0/vigil/pkg/git"
)

// Committer turns one debounce firing into at most one commit. It opens a
// fresh repository handle per firing, settles nested repositories before the
// parent, and pushes best-effort when the snapshot asks for it.
type Committer struct {
	Logger *slog.Logger
}

// NewCommitter creates a Committer.
func NewCommitter(logger *slog.Logger) *Committer {
	return &Committer{Logger: logger}
}

// Handle implements core.Handler.
func (c *Committer) Handle(ctx context.Context, snap core.Snapshot) error {
	client := git.NewClient(snap.RepoPath, c.Logger)

	if err := client.EnsureRepo(); err != nil {
		return err
	}

	if err := c.settleSubmodules(ctx, client, snap); err != nil {
		// A dirty submodule would be recorded at a stale revision; better to
		// skip this firing and let the next one retry.
		return fmt.Errorf("failed to settle nested repositories: %w", err)
	}

	committed, err := c.commitWorkTree(client)
	if err != nil {
		return err
	}
	if committed {
		c.pushIfEnabled(client, snap)
	}

	return nil
}

// settleSubmodules runs the full commit procedure on each registered nested
// repository before the parent records its pointer, depth-first so
// grandchildren settle before children. Nested repositories push with the
// same settings as the root. Any failure aborts the parent commit.
func (c *Committer) settleSubmodules(ctx context.Context, parent *git.Client, snap core.Snapshot) error {
	subs, err := parent.Submodules()
	if err != nil {
		return err
	}

	for _, sub := range subs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		path := filepath.Join(parent.WorkDir, sub)
		client := git.NewClient(path, c.Logger)
		if !client.IsRepo() {
			// Registered but not checked out; nothing to settle.
			continue
		}
		if err := c.settleSubmodules(ctx, client, snap); err != nil {
			return err
		}
		committed, err := c.commitWorkTree(client)
		if err != nil {
			return fmt.Errorf("nested repository %s: %w", sub, err)
		}
		if committed {
			c.pushIfEnabled(client, snap)
		}
	}

	return nil
}

// pushIfEnabled pushes a freshly committed repository to its remote. Push is
// best-effort: the local commit is already recorded, so failures are logged
// and swallowed.
func (c *Committer) pushIfEnabled(client *git.Client, snap core.Snapshot) {
	if !snap.AutoPush || !client.HasRemote() {
		return
	}

	opts := git.PushOptions{
		SSHKey:              snap.SSHKey,
		UseCredentialHelper: snap.UseCredentialHelper,
	}
	if err := client.Push(opts); err != nil {
		if c.Logger != nil {
			c.Logger.Warn("push failed, commit is local only", "repo", client.WorkDir, "error", err)
		}
	} else if c.Logger != nil {
		c.Logger.Info("pushed to remote", "repo", client.WorkDir)
	}
}

// commitWorkTree stages and commits every pending change in a repository.
// It reports whether a commit was actually created: a quiet period can end
// with no net change, in which case the firing is a logged no-op.
func (c *Committer) commitWorkTree(client *git.Client) (bool, error) {
	set, err := client.Changes()
	if err != nil {
		return false, err
	}

	if set.Empty() {
		if c.Logger != nil {
			c.Logger.Debug("no changes to commit", "repo", client.WorkDir)
		}
		return false, nil
	}

	if err := client.AddAll(); err != nil {
		return false, err
	}

	msg := FormatMessage(set)
	if err := client.Commit(msg); err != nil {
		return false, err
	}

	if c.Logger != nil {
		c.Logger.Info("committed changes",
			"repo", client.WorkDir,
			"added", len(set.Added),
			"modified", len(set.Modified),
			"deleted", len(set.Deleted),
		)
	}

	return true, nil
}
