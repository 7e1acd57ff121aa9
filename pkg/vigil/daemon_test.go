package vigil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/vigil/pkg/config"
	"github.com/aretw0/vigil/pkg/core"
	"github.com/aretw0/vigil/pkg/git"
)

func TestDaemon_CommitsAfterQuietPeriod(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}

	client := newTestRepo(t)

	cfg := config.Config{
		Name:            "test",
		WatchDir:        client.WorkDir,
		CommitDelaySecs: 1,
		AutoPush:        false,
	}

	daemon, err := NewDaemon(cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- daemon.Run(ctx)
	}()

	// Give the watcher a moment to establish its watch before writing.
	time.Sleep(500 * time.Millisecond)

	// Two changes inside one quiet period must collapse into one commit.
	writeFile(t, client.WorkDir, "first.txt", "hello")
	writeFile(t, client.WorkDir, "second.txt", "world")

	require.Eventually(t, func() bool {
		head, err := client.Head()
		return err == nil && head != ""
	}, 15*time.Second, 100*time.Millisecond, "expected a commit to appear")

	msg, err := client.Run("log", "-1", "--format=%B")
	require.NoError(t, err)
	require.Contains(t, msg, "first.txt")
	require.Contains(t, msg, "second.txt")

	count, err := client.Run("rev-list", "--count", "HEAD")
	require.NoError(t, err)
	require.Equal(t, "1", count)

	set, err := client.Changes()
	require.NoError(t, err)
	require.True(t, set.Empty(), "tree should be clean after the commit")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not shut down")
	}
}

func TestDaemon_IgnoredChangesDoNotCommit(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}

	client := newTestRepo(t)

	cfg := config.Config{
		Name:            "test",
		WatchDir:        client.WorkDir,
		CommitDelaySecs: 1,
		AutoPush:        false,
		IgnorePatterns:  []string{"**/*.tmp"},
	}

	daemon, err := NewDaemon(cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- daemon.Run(ctx)
	}()

	time.Sleep(500 * time.Millisecond)

	writeFile(t, client.WorkDir, "scratch.tmp", "noise")
	time.Sleep(3 * time.Second)

	_, err = client.Head()
	require.Error(t, err, "ignored changes must not produce a commit")

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not shut down")
	}
}

func TestWatchSentry_SignalsAfterBudget(t *testing.T) {
	sentry := newWatchSentry(2)

	// Failures within the restart budget stay quiet.
	sentry.onFailure(core.ErrWatchLost)
	sentry.onFailure(core.ErrWatchLost)
	select {
	case err := <-sentry.fatal:
		t.Fatalf("signaled too early: %v", err)
	default:
	}

	sentry.onFailure(core.ErrWatchLost)
	select {
	case err := <-sentry.fatal:
		require.ErrorIs(t, err, core.ErrWatchLost)
	default:
		t.Fatal("exhausted restart budget was not signaled")
	}
}

func TestWatchSentry_IgnoresOtherErrors(t *testing.T) {
	sentry := newWatchSentry(0)

	sentry.onFailure(errors.New("transient hiccup"))
	select {
	case err := <-sentry.fatal:
		t.Fatalf("unexpected signal: %v", err)
	default:
	}
}

func TestNewDaemon_RejectsInvalidConfig(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}

	_, err := NewDaemon(config.Config{Name: "bad"}, nil)
	require.Error(t, err)
}
