package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.home.luguber.info/inful/blogsync/internal/config"
)

// NewTarget creates a notes vault and a site tree under t.TempDir() with the
// standard directory layout and returns the resolved target.
func NewTarget(t *testing.T, name string, aiImages bool) config.Target {
	t.Helper()
	root := t.TempDir()
	tgt := config.Target{
		Name:               name,
		NotesRoot:          filepath.Join(root, "notes"),
		SiteRoot:           filepath.Join(root, "site"),
		BaseURL:            "https://blog.example.com/posts",
		DeployBranch:       "deploy",
		DeployRemoteBranch: "deploy",
		AIImages:           aiImages,
	}
	tgt.ResolvePaths()

	dirs := []string{tgt.Paths.PostsSource, tgt.Paths.ImagesSource, tgt.Paths.PostsDest, tgt.Paths.ImagesDest}
	if aiImages {
		dirs = append(dirs, tgt.Paths.AIImagesSource, tgt.Paths.AIImagesDest)
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	return tgt
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

// SetMtime sets both access and modification time of path.
func SetMtime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
