package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(imgs []Image) []string {
	out := make([]string, 0, len(imgs))
	for _, img := range imgs {
		out = append(out, img.Name)
	}
	return out
}

func TestSiteImages_CanonicalRefs(t *testing.T) {
	doc := "---\ntitle: x\n---\n# Post\n\n![Image](/images/a.png)\n\nText ![alt](/images/ai_images/b.png) and ![ext](https://cdn.example.com/c.png)\n"
	assert.Equal(t, []string{"a.png", "ai_images/b.png"}, names(SiteImages([]byte(doc))))
}

func TestSiteImages_Deduplicates(t *testing.T) {
	doc := "![Image](/images/a.png)\n\n![Image](/images/a.png)\n"
	assert.Equal(t, []string{"a.png"}, names(SiteImages([]byte(doc))))
}

func TestSiteImages_PermissiveDestinationWithSpaces(t *testing.T) {
	doc := "![Image](/images/has space.png)\n"
	imgs := SiteImages([]byte(doc))
	require.Len(t, imgs, 1)
	assert.Equal(t, "has space.png", imgs[0].Name)
}

func TestSiteImages_IgnoresCode(t *testing.T) {
	doc := "```\n![Image](/images/fenced.png)\n```\n\n    ![Image](/images/indented.png)\n\nuse `![Image](/images/inline.png)` here\n"
	assert.Empty(t, SiteImages([]byte(doc)))
}

func TestCanonicalNames(t *testing.T) {
	assert.Equal(t, []string{"x.png", "y z.png"}, CanonicalNames("![a](/images/x.png) ![](/images/y z.png) ![b](/static/q.png)"))
}
