// Package markdown extracts image references from Markdown documents for
// the image verification pass.
package markdown

// ImagePrefix is the site path under which synced images are served.
const ImagePrefix = "/images/"

// Image is an image reference found in a document.
type Image struct {
	Destination string // as written, e.g. "/images/ai_images/a.png"
	Name        string // path below ImagePrefix, e.g. "ai_images/a.png"
}
