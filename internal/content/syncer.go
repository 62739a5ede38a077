// Package content mirrors vault posts into the Hugo content tree, rewriting
// legacy image references on the way.
package content

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/blogsync/internal/config"
	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
	"git.home.luguber.info/inful/blogsync/internal/frontmatter"
	"git.home.luguber.info/inful/blogsync/internal/imagepath"
	"git.home.luguber.info/inful/blogsync/internal/logfields"
)

// Run is the part of a sync run the content stage updates.
type Run interface {
	imagepath.Marker
	AddProcessed(n int)
}

// Syncer copies <notes>/posts/*.md to <site>/content/posts.
type Syncer struct {
	paths    config.Paths
	baseURL  string
	rewriter *imagepath.Rewriter
}

// NewSyncer builds a syncer for a resolved target.
func NewSyncer(t config.Target) *Syncer {
	return &Syncer{
		paths:    t.Paths,
		baseURL:  t.BaseURL,
		rewriter: imagepath.NewRewriter(t.Paths.ImagesSource),
	}
}

// Sync rewrites every source post and mirrors it to the destination.
//
// The source file is written back only when the rewrite changed it. The
// destination is written when it is missing or its fingerprint differs. A
// post for which either write happened counts as processed, and any
// processed post marks the run changed. The first I/O error aborts the sync;
// files handled before it keep their new content.
func (s *Syncer) Sync(ctx context.Context, run Run) error {
	posts, err := listPosts(s.paths.PostsSource)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.paths.PostsDest, 0o750); err != nil {
		return ferrors.FileSystemError("create content destination").
			WithCause(err).
			WithContext("path", s.paths.PostsDest).
			Build()
	}

	processed := 0
	for _, name := range posts {
		if err := ctx.Err(); err != nil {
			return err
		}
		wrote, err := s.syncPost(name, run)
		if err != nil {
			return err
		}
		if wrote {
			processed++
		}
	}

	run.AddProcessed(processed)
	if processed > 0 {
		run.MarkChanged("content updated")
	}
	slog.Info("Content sync complete",
		logfields.Count(processed),
		slog.Int("posts", len(posts)),
		logfields.Path(s.paths.PostsDest))
	return nil
}

func (s *Syncer) syncPost(name string, run Run) (bool, error) {
	src := filepath.Join(s.paths.PostsSource, name)
	raw, err := os.ReadFile(src)
	if err != nil {
		return false, readError(err, src)
	}

	rewritten, err := s.rewriter.Rewrite(string(raw), run)
	if err != nil {
		return false, ferrors.ContentError("rewrite image references").
			WithCause(err).
			WithContext("file", name).
			Build()
	}
	out := []byte(rewritten)

	wrote := false
	if !bytes.Equal(out, raw) {
		if err := writeFile(src, out); err != nil {
			return false, err
		}
		slog.Info("Rewrote legacy image references", logfields.File(name))
		wrote = true
	}

	dst := filepath.Join(s.paths.PostsDest, name)
	current, err := os.ReadFile(dst)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return false, readError(err, dst)
	case frontmatter.Fingerprint(current) == frontmatter.Fingerprint(out):
		return wrote, nil
	}

	if err := writeFile(dst, out); err != nil {
		return false, err
	}
	slog.Debug("Copied post", logfields.File(name), logfields.Path(dst))
	return true, nil
}

// listPosts returns the Markdown file names directly inside dir, sorted.
func listPosts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.ContentError("posts source directory does not exist").
				WithCause(err).
				WithContext("path", dir).
				Build()
		}
		return nil, readError(err, dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func writeFile(path string, data []byte) error {
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return ferrors.FileSystemError("write post").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}

func readError(err error, path string) error {
	return ferrors.FileSystemError("read post").
		WithCause(err).
		WithContext("path", path).
		Build()
}
