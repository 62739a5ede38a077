package frontmatter

import (
	"github.com/inful/mdfp"
)

// Fingerprint returns the mdfp hash of the whole document. Every byte counts,
// including a fingerprint field in the frontmatter, so two documents share a
// fingerprint only when they are identical.
func Fingerprint(content []byte) string {
	return mdfp.CalculateFingerprint(string(content))
}
