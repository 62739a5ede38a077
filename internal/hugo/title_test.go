package hugo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogsync/internal/testutil"
)

func TestRenderedTitle(t *testing.T) {
	site := t.TempDir()
	testutil.WriteFile(t, RenderedPagePath(site, "my-post"),
		"<!doctype html><html><head><title>\n  My Post | Blog\n</title></head><body><h1>x</h1></body></html>")

	title, err := RenderedTitle(site, "my-post")
	require.NoError(t, err)
	assert.Equal(t, "My Post | Blog", title)
}

func TestRenderedTitle_NoTitle(t *testing.T) {
	site := t.TempDir()
	testutil.WriteFile(t, RenderedPagePath(site, "bare"), "<html><body>hi</body></html>")

	_, err := RenderedTitle(site, "bare")
	require.ErrorIs(t, err, ErrTitleNotFound)
}

func TestRenderedTitle_MissingPage(t *testing.T) {
	_, err := RenderedTitle(t.TempDir(), "nope")
	require.Error(t, err)
}
