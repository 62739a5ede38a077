package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// SetupTestGitRepo initializes a repository in dir with a single commit so
// HEAD resolves.
func SetupTestGitRepo(t *testing.T, dir string) plumbing.Hash {
	t.Helper()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to initialize git repo: %v", err)
	}
	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}

	WriteFile(t, filepath.Join(dir, "README.md"), "# site\n")
	if _, err := w.Add("README.md"); err != nil {
		t.Fatalf("failed to stage README: %v", err)
	}
	hash, err := w.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Unix(1_700_000_000, 0)},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return hash
}
