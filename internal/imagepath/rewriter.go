// Package imagepath rewrites wikilink image embeds into canonical Markdown
// image references and normalizes the backing files in the notes vault.
package imagepath

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
	"git.home.luguber.info/inful/blogsync/internal/logfields"
)

// legacyRefPattern matches [[name.png]] with an optional leading "!" embed marker.
var legacyRefPattern = regexp.MustCompile(`!?\[\[([^\]]*\.png)\]\]`)

// Marker receives the side effects of a rewrite.
type Marker interface {
	MarkChanged(reason string)
	AddRenamed(n int)
}

// Ref is a legacy reference found in a document.
type Ref struct {
	Text string // full matched text, e.g. "![[My Image.png]]"
	Name string // referenced file name, e.g. "My Image.png"
}

// LegacyRefs returns every legacy image reference in content, in order.
func LegacyRefs(content string) []Ref {
	matches := legacyRefPattern.FindAllStringSubmatch(content, -1)
	refs := make([]Ref, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, Ref{Text: m[0], Name: m[1]})
	}
	return refs
}

// NormalizeName replaces spaces with underscores.
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// Canonical returns the Markdown image reference for a normalized file name.
func Canonical(normalized string) string {
	return "![Image](/images/" + normalized + ")"
}

// Rewriter renames referenced images inside imagesDir and rewrites references.
type Rewriter struct {
	imagesDir string
}

// NewRewriter returns a rewriter operating on the vault image directory.
func NewRewriter(imagesDir string) *Rewriter {
	return &Rewriter{imagesDir: imagesDir}
}

// Rewrite replaces every legacy reference in content with its canonical form.
// A referenced file whose name contains spaces is renamed in the vault and the
// run is marked changed. A missing file is logged and the reference is still
// rewritten. Content without legacy references is returned unchanged.
func (r *Rewriter) Rewrite(content string, run Marker) (string, error) {
	refs := LegacyRefs(content)
	if len(refs) == 0 {
		return content, nil
	}

	normalized := make(map[string]string, len(refs))
	for _, ref := range refs {
		if _, ok := normalized[ref.Name]; ok {
			continue
		}
		name := NormalizeName(ref.Name)
		if err := r.renameSource(ref.Name, name, run); err != nil {
			return content, err
		}
		normalized[ref.Name] = name
	}

	// Each match is replaced whole so a bare reference never rewrites the
	// inside of an embed of the same file.
	return legacyRefPattern.ReplaceAllStringFunc(content, func(match string) string {
		name := legacyRefPattern.FindStringSubmatch(match)[1]
		return Canonical(normalized[name])
	}), nil
}

func (r *Rewriter) renameSource(original, normalized string, run Marker) error {
	if original == normalized {
		return nil
	}
	src := filepath.Join(r.imagesDir, original)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Referenced image missing in vault, rewriting reference only",
				logfields.Image(original), logfields.Path(r.imagesDir))
			return nil
		}
		return ferrors.FileSystemError("stat referenced image").
			WithCause(err).
			WithContext("image", original).
			Build()
	}

	dst := filepath.Join(r.imagesDir, normalized)
	if _, err := os.Stat(dst); err == nil {
		slog.Warn("Normalized image already exists, keeping both files",
			logfields.Image(original), slog.String("normalized", normalized))
		return nil
	}
	if err := os.Rename(src, dst); err != nil {
		return ferrors.FileSystemError(fmt.Sprintf("rename %q to %q", original, normalized)).
			WithCause(err).
			WithContext("dir", r.imagesDir).
			Build()
	}
	slog.Info("Renamed vault image", logfields.Image(original), slog.String("normalized", normalized))
	run.AddRenamed(1)
	run.MarkChanged("image renamed: " + normalized)
	return nil
}
