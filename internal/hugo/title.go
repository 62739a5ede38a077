package hugo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
)

// RenderedPagePath is where Hugo writes the page for a post slug.
func RenderedPagePath(sitePath, slug string) string {
	return filepath.Join(sitePath, "public", "posts", slug, "index.html")
}

// RenderedTitle returns the <title> text of the rendered page for slug.
func RenderedTitle(sitePath, slug string) (string, error) {
	path := RenderedPagePath(sitePath, slug)
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryNotFound, "rendered page not found").
			WithContext("path", path).
			Build()
	}
	defer func() { _ = f.Close() }()

	doc, err := html.Parse(f)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryHugo, "failed to parse rendered page").
			WithContext("path", path).
			Build()
	}

	if title, ok := findTitle(doc); ok {
		return title, nil
	}
	return "", fmt.Errorf("%w: %s", ErrTitleNotFound, path)
}

func findTitle(n *html.Node) (string, bool) {
	if n.Type == html.ElementNode && n.Data == "title" {
		var b strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
		return strings.Join(strings.Fields(b.String()), " "), true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title, ok := findTitle(c); ok {
			return title, true
		}
	}
	return "", false
}
