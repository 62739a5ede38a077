// Package images keeps the Hugo static image directories in line with the
// notes vault.
//
// Standard images are append-only: they are copied when missing or stale and
// never deleted. AI images are mirrored, so files removed from the vault are
// removed from the site too.
package images

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/blogsync/internal/config"
	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
	"git.home.luguber.info/inful/blogsync/internal/imagepath"
	"git.home.luguber.info/inful/blogsync/internal/logfields"
	"git.home.luguber.info/inful/blogsync/internal/markdown"
)

// aiPrefix is the sub-path of /images/ that holds mirrored AI images.
const aiPrefix = "ai_images/"

// Run is the part of a sync run the image stage updates.
type Run interface {
	MarkChanged(reason string)
	AddCopied(n int)
	AddDeleted(n int)
	AddMissing(n int)
}

// Syncer verifies image references in published posts and copies or mirrors
// the backing files.
type Syncer struct {
	paths    config.Paths
	aiImages bool
}

// NewSyncer builds a syncer for a resolved target.
func NewSyncer(t config.Target) *Syncer {
	return &Syncer{paths: t.Paths, aiImages: t.AIImages}
}

// Sync runs the verification pass and, when enabled, the AI mirror pass.
func (s *Syncer) Sync(ctx context.Context, run Run) error {
	if err := s.checkDirs(); err != nil {
		return err
	}
	slog.Info("Verifying image sync",
		slog.String("source", s.paths.ImagesSource),
		slog.String("destination", s.paths.ImagesDest))

	if err := s.verify(ctx, run); err != nil {
		return err
	}
	if !s.aiImages {
		return nil
	}
	return s.mirrorAI(ctx, run)
}

func (s *Syncer) checkDirs() error {
	dirs := []string{s.paths.PostsDest, s.paths.ImagesSource, s.paths.ImagesDest}
	if s.aiImages {
		dirs = append(dirs, s.paths.AIImagesSource, s.paths.AIImagesDest)
	}
	for _, d := range dirs {
		info, err := os.Stat(d)
		if err == nil && info.IsDir() {
			continue
		}
		if err == nil {
			err = fmt.Errorf("%s is not a directory", d)
		}
		return ferrors.ImagesError("directory not found").
			WithCause(err).
			WithContext("path", d).
			Build()
	}
	return nil
}

// verify walks the published posts and makes sure every /images/ reference
// resolves in the site.
func (s *Syncer) verify(ctx context.Context, run Run) error {
	entries, err := os.ReadDir(s.paths.PostsDest)
	if err != nil {
		return ferrors.FileSystemError("list published posts").
			WithCause(err).
			WithContext("path", s.paths.PostsDest).
			Build()
	}

	refs := 0
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := os.ReadFile(filepath.Join(s.paths.PostsDest, e.Name()))
		if err != nil {
			return ferrors.FileSystemError("read published post").
				WithCause(err).
				WithContext("file", e.Name()).
				Build()
		}

		if legacy := imagepath.LegacyRefs(string(raw)); len(legacy) > 0 {
			slog.Warn("Unconverted image links in published post",
				logfields.File(e.Name()), logfields.Count(len(legacy)))
		}

		for _, img := range markdown.SiteImages(raw) {
			if s.aiImages && strings.HasPrefix(img.Name, aiPrefix) {
				continue
			}
			refs++
			if err := s.ensure(img.Name, e.Name(), run); err != nil {
				return err
			}
		}
	}
	slog.Info("Image verification complete", logfields.Count(refs))
	return nil
}

// ensure copies a referenced image into the site when it is missing or older
// than the vault copy. An image missing on both sides is reported and marks
// the run changed.
func (s *Syncer) ensure(name, post string, run Run) error {
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		slog.Warn("Ignoring image reference outside the image directory",
			logfields.Image(name), logfields.File(post))
		return nil
	}
	src := filepath.Join(s.paths.ImagesSource, rel)
	dst := filepath.Join(s.paths.ImagesDest, rel)

	srcInfo, srcErr := os.Stat(src)
	dstInfo, dstErr := os.Stat(dst)
	if srcErr != nil && !errors.Is(srcErr, fs.ErrNotExist) {
		return statError(srcErr, src)
	}
	if dstErr != nil && !errors.Is(dstErr, fs.ErrNotExist) {
		return statError(dstErr, dst)
	}

	switch {
	case srcErr == nil:
		if dstErr == nil && !srcInfo.ModTime().After(dstInfo.ModTime()) {
			return nil
		}
		if err := copyFile(src, dst); err != nil {
			return err
		}
		slog.Info("Copied image", logfields.Image(name), logfields.File(post))
		run.AddCopied(1)
		run.MarkChanged("image copied: " + name)
	case dstErr == nil:
		// Published already; the vault copy may have been archived.
	default:
		slog.Warn("Referenced image missing in vault and site",
			logfields.Image(name), logfields.File(post))
		run.AddMissing(1)
		run.MarkChanged("image missing: " + name)
	}
	return nil
}

func statError(err error, path string) error {
	return ferrors.FileSystemError("stat image").
		WithCause(err).
		WithContext("path", path).
		Build()
}
