// Package git wraps the git binary for the small set of repository
// operations the commit pipeline needs.
//
// A Client is cheap: it holds a working directory and a logger, nothing
// else. Callers construct one per firing and drop it when the firing ends —
// handles are never shared across threads or held across the debounce
// boundary.
package git

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Client executes git commands in a fixed working directory.
type Client struct {
	WorkDir string
	Logger  *slog.Logger
}

// NewClient creates a new git client for the given working directory.
func NewClient(workDir string, logger *slog.Logger) *Client {
	return &Client{
		WorkDir: workDir,
		Logger:  logger,
	}
}

// IsInstalled checks if git is available in the system path.
func IsInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Run executes a raw git command in the working directory.
func (c *Client) Run(args ...string) (string, error) {
	out, _, err := c.run(nil, args...)
	return out, err
}

// run executes git with optional extra environment variables and returns the
// combined output, the exit code, and an error for non-zero exits.
func (c *Client) run(env map[string]string, args ...string) (string, int, error) {
	if c.Logger != nil {
		c.Logger.Debug("executing git", "args", args, "dir", c.WorkDir)
	}

	cmd := exec.Command("git", args...)
	cmd.Dir = c.WorkDir
	if len(env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))

	if err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return output, code, fmt.Errorf("git %s failed: %w\nOutput: %s", args[0], err, output)
	}

	return output, 0, nil
}

// IsRepo reports whether the working directory is inside a git work tree.
func (c *Client) IsRepo() bool {
	_, err := c.Run("rev-parse", "--is-inside-work-tree")
	return err == nil
}

// Init initializes a new git repository. Safe to re-run.
func (c *Client) Init() error {
	_, err := c.Run("init")
	return err
}

// EnsureRepo opens the repository, initializing one when none exists.
func (c *Client) EnsureRepo() error {
	if c.IsRepo() {
		return nil
	}
	if err := c.Init(); err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}
	return nil
}

// AddAll stages every change in the working tree, including deletions and
// nested-repository pointer updates.
func (c *Client) AddAll() error {
	_, err := c.Run("add", "-A")
	return err
}

// Commit records staged changes against the current branch tip.
func (c *Client) Commit(msg string) error {
	_, err := c.Run("commit", "-m", msg)
	return err
}

// Head resolves the current HEAD commit hash.
func (c *Client) Head() (string, error) {
	return c.Run("rev-parse", "HEAD")
}

// CurrentBranch returns the short name of the checked-out branch.
func (c *Client) CurrentBranch() (string, error) {
	return c.Run("rev-parse", "--abbrev-ref", "HEAD")
}

// HasUpstream reports whether the current branch tracks an upstream.
func (c *Client) HasUpstream() bool {
	_, err := c.Run("rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}")
	return err == nil
}

// HasRemote reports whether any remote is configured.
func (c *Client) HasRemote() bool {
	out, err := c.Run("remote")
	return err == nil && strings.TrimSpace(out) != ""
}

// CheckIgnore reports whether the repository's ignore rules exclude path.
// The returned error signals that evaluation could not be performed at all
// (e.g. no repository yet); callers are expected to fail open.
func (c *Client) CheckIgnore(path string) (bool, error) {
	_, code, err := c.run(nil, "check-ignore", "-q", path)
	switch code {
	case 0:
		return true, nil
	case 1:
		// Not ignored.
		return false, nil
	default:
		return false, fmt.Errorf("check-ignore failed for %s: %w", path, err)
	}
}
