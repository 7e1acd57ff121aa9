package git

import (
	"os"
	"path/filepath"
	"testing"
)

// newTestRepo initializes a repository with a committer identity so commits
// work in bare CI environments.
func newTestRepo(t *testing.T) *Client {
	t.Helper()

	if !IsInstalled() {
		t.Skip("git not installed")
	}

	client := NewClient(t.TempDir(), nil)
	if err := client.Init(); err != nil {
		t.Fatalf("Failed to init: %v", err)
	}
	if _, err := client.Run("config", "user.email", "test@example.com"); err != nil {
		t.Fatalf("Failed to set user.email: %v", err)
	}
	if _, err := client.Run("config", "user.name", "Test"); err != nil {
		t.Fatalf("Failed to set user.name: %v", err)
	}
	return client
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestClient_EnsureRepo(t *testing.T) {
	if !IsInstalled() {
		t.Skip("git not installed")
	}

	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)

	if client.IsRepo() {
		t.Fatal("empty directory should not be a repo")
	}

	if err := client.EnsureRepo(); err != nil {
		t.Fatalf("Failed to ensure repo: %v", err)
	}
	if !client.IsRepo() {
		t.Error("expected a repository after EnsureRepo")
	}

	// Idempotent on an existing repository.
	if err := client.EnsureRepo(); err != nil {
		t.Fatalf("EnsureRepo on existing repo failed: %v", err)
	}
}

func TestClient_CommitFlow(t *testing.T) {
	client := newTestRepo(t)

	writeFile(t, client.WorkDir, "a.txt", "hello")

	if err := client.AddAll(); err != nil {
		t.Fatalf("Failed to stage: %v", err)
	}
	if err := client.Commit("Added 1\n\nAdded:\n  a.txt"); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}

	head, err := client.Head()
	if err != nil {
		t.Fatalf("Failed to resolve HEAD: %v", err)
	}
	if head == "" {
		t.Error("expected a HEAD commit hash")
	}

	set, err := client.Changes()
	if err != nil {
		t.Fatalf("Failed to read status: %v", err)
	}
	if !set.Empty() {
		t.Errorf("expected clean tree after commit, got %+v", set)
	}
}

func TestClient_Changes(t *testing.T) {
	client := newTestRepo(t)

	writeFile(t, client.WorkDir, "keep.txt", "v1")
	writeFile(t, client.WorkDir, "gone.txt", "v1")
	if err := client.AddAll(); err != nil {
		t.Fatalf("Failed to stage: %v", err)
	}
	if err := client.Commit("initial"); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}

	writeFile(t, client.WorkDir, "keep.txt", "v2")
	writeFile(t, client.WorkDir, "new.txt", "v1")
	if err := os.Remove(filepath.Join(client.WorkDir, "gone.txt")); err != nil {
		t.Fatalf("Failed to remove file: %v", err)
	}

	set, err := client.Changes()
	if err != nil {
		t.Fatalf("Failed to read status: %v", err)
	}

	if len(set.Added) != 1 || set.Added[0] != "new.txt" {
		t.Errorf("Added = %v, want [new.txt]", set.Added)
	}
	if len(set.Modified) != 1 || set.Modified[0] != "keep.txt" {
		t.Errorf("Modified = %v, want [keep.txt]", set.Modified)
	}
	if len(set.Deleted) != 1 || set.Deleted[0] != "gone.txt" {
		t.Errorf("Deleted = %v, want [gone.txt]", set.Deleted)
	}
}

func TestClient_CheckIgnore(t *testing.T) {
	client := newTestRepo(t)

	writeFile(t, client.WorkDir, ".gitignore", "*.log\n")

	ignored, err := client.CheckIgnore(filepath.Join(client.WorkDir, "debug.log"))
	if err != nil {
		t.Fatalf("CheckIgnore failed: %v", err)
	}
	if !ignored {
		t.Error("expected debug.log to be ignored")
	}

	ignored, err = client.CheckIgnore(filepath.Join(client.WorkDir, "notes.txt"))
	if err != nil {
		t.Fatalf("CheckIgnore failed: %v", err)
	}
	if ignored {
		t.Error("expected notes.txt not to be ignored")
	}
}

func TestClient_CheckIgnore_NoRepo(t *testing.T) {
	if !IsInstalled() {
		t.Skip("git not installed")
	}

	client := NewClient(t.TempDir(), nil)

	if _, err := client.CheckIgnore("anything.txt"); err == nil {
		t.Error("expected an error outside a repository")
	}
}

func TestClient_Submodules(t *testing.T) {
	seed := newTestRepo(t)
	writeFile(t, seed.WorkDir, "seed.txt", "v1")
	if err := seed.AddAll(); err != nil {
		t.Fatalf("Failed to stage: %v", err)
	}
	if err := seed.Commit("seed"); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}

	parent := newTestRepo(t)
	if _, err := parent.Run("-c", "protocol.file.allow=always", "submodule", "add", seed.WorkDir, "nested"); err != nil {
		t.Fatalf("Failed to add submodule: %v", err)
	}

	subs, err := parent.Submodules()
	if err != nil {
		t.Fatalf("Submodules failed: %v", err)
	}
	if len(subs) != 1 || subs[0] != "nested" {
		t.Errorf("Submodules = %v, want [nested]", subs)
	}
}

func TestClient_Submodules_None(t *testing.T) {
	client := newTestRepo(t)

	subs, err := client.Submodules()
	if err != nil {
		t.Fatalf("Submodules failed: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("expected no submodules, got %v", subs)
	}
}
