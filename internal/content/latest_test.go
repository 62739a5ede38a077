package content

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
	"git.home.luguber.info/inful/blogsync/internal/testutil"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "my-first-post", Slug("My First Post.md"))
	assert.Equal(t, "plain", Slug("plain.md"))
	// "e" + combining acute (NFD, as produced by macOS) equals the NFC form.
	assert.Equal(t, "caf\u00e9", Slug("Cafe\u0301.md"))
	assert.Equal(t, "caf\u00e9", Slug("Caf\u00e9.md"))
}

func TestPostURL(t *testing.T) {
	assert.Equal(t, "https://blog.example.com/posts/x/", PostURL("https://blog.example.com/posts", "x"))
	assert.Equal(t, "https://blog.example.com/posts/x/", PostURL("https://blog.example.com/posts/", "x"))
}

func TestLatestPost(t *testing.T) {
	tgt := testutil.NewTarget(t, "human", false)
	older := filepath.Join(tgt.Paths.PostsSource, "Older.md")
	newer := filepath.Join(tgt.Paths.PostsSource, "Newest Post.md")
	testutil.WriteFile(t, older, "---\ntitle: Older\n---\n")
	testutil.WriteFile(t, newer, "---\ntitle: Newest Post Title\n---\nbody\n")
	now := time.Now()
	testutil.SetMtime(t, older, now.Add(-2*time.Hour))
	testutil.SetMtime(t, newer, now.Add(-time.Hour))

	post, err := NewSyncer(tgt).LatestPost()
	require.NoError(t, err)

	assert.Equal(t, "Newest Post.md", post.Name)
	assert.Equal(t, "newest-post", post.Slug)
	assert.Equal(t, "Newest Post Title", post.Title)
	assert.Equal(t, "https://blog.example.com/posts/newest-post/", post.URL)
}

func TestLatestPost_NoPosts(t *testing.T) {
	tgt := testutil.NewTarget(t, "human", false)

	_, err := NewSyncer(tgt).LatestPost()
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestLatestPost_RequiresBaseURL(t *testing.T) {
	tgt := testutil.NewTarget(t, "human", false)
	tgt.BaseURL = ""
	testutil.WriteFile(t, filepath.Join(tgt.Paths.PostsSource, "p.md"), "x")

	_, err := NewSyncer(tgt).LatestPost()
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestLatestPost_BadFrontmatterStillReturnsURL(t *testing.T) {
	tgt := testutil.NewTarget(t, "human", false)
	path := filepath.Join(tgt.Paths.PostsSource, "Broken.md")
	testutil.WriteFile(t, path, "---\ntitle: [oops\n---\n")

	post, err := NewSyncer(tgt).LatestPost()
	require.NoError(t, err)
	assert.Empty(t, post.Title)
	assert.Equal(t, "https://blog.example.com/posts/broken/", post.URL)
	_, statErr := os.Stat(path)
	require.NoError(t, statErr)
}
