package markdown

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/blogsync/internal/frontmatter"
)

var canonicalPattern = regexp.MustCompile(`!\[[^\]]*\]\(` + regexp.QuoteMeta(ImagePrefix) + `([^)]+)\)`)

// SiteImages returns the distinct /images/... references in a document, in
// order of first appearance. Frontmatter is skipped. Goldmark finds the
// CommonMark-valid references; a permissive pass adds destinations Goldmark
// rejects (e.g. containing spaces). References inside code are ignored.
func SiteImages(content []byte) []Image {
	body := content
	if _, b, had, _, err := frontmatter.Split(content); err == nil && had {
		body = b
	}

	seen := map[string]bool{}
	out := make([]Image, 0)
	add := func(dest string) {
		name, ok := strings.CutPrefix(dest, ImagePrefix)
		if !ok || name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, Image{Destination: dest, Name: name})
	}

	root := goldmark.New().Parser().Parse(text.NewReader(body))
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if img, ok := n.(*gmast.Image); ok {
			add(string(img.Destination))
		}
		return gmast.WalkContinue, nil
	})

	for _, dest := range permissiveImages(body) {
		add(dest)
	}
	return out
}

// CanonicalNames applies the plain canonical pattern to raw text without any
// Markdown parsing.
func CanonicalNames(content string) []string {
	matches := canonicalPattern.FindAllStringSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
