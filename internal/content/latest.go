package content

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
	"git.home.luguber.info/inful/blogsync/internal/frontmatter"
	"git.home.luguber.info/inful/blogsync/internal/logfields"
)

// Post describes a source post and where it is published.
type Post struct {
	Name    string
	Path    string
	Slug    string
	Title   string
	URL     string
	ModTime time.Time
}

// Slug derives the URL slug from a post file name: the NFC-normalized,
// lowercased stem with spaces replaced by hyphens.
func Slug(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	stem = norm.NFC.String(strings.TrimSpace(stem))
	return strings.ReplaceAll(strings.ToLower(stem), " ", "-")
}

// PostURL joins the blog base URL and a slug as <base>/<slug>/.
func PostURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/" + slug + "/"
}

// LatestPost returns the most recently modified source post.
func (s *Syncer) LatestPost() (Post, error) {
	if s.baseURL == "" {
		return Post{}, ferrors.ConfigError("blog base URL not set").Build()
	}
	names, err := listPosts(s.paths.PostsSource)
	if err != nil {
		return Post{}, err
	}

	var latest Post
	for _, name := range names {
		path := filepath.Join(s.paths.PostsSource, name)
		info, err := os.Stat(path)
		if err != nil {
			return Post{}, readError(err, path)
		}
		if latest.Name == "" || info.ModTime().After(latest.ModTime) {
			latest = Post{Name: name, Path: path, ModTime: info.ModTime()}
		}
	}
	if latest.Name == "" {
		return Post{}, ferrors.NotFoundError("no posts found").
			WithContext("path", s.paths.PostsSource).
			Build()
	}

	latest.Slug = Slug(latest.Name)
	latest.URL = PostURL(s.baseURL, latest.Slug)
	if raw, err := os.ReadFile(latest.Path); err == nil {
		if doc, err := frontmatter.Parse(raw); err == nil {
			latest.Title = doc.Title()
		} else {
			slog.Warn("Unreadable frontmatter in latest post", logfields.File(latest.Name), logfields.Error(err))
		}
	}
	return latest, nil
}
