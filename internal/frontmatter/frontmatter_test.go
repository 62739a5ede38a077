package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, _, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, had, _, err := Split([]byte("---\nkey: value\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, had, _, err := Split([]byte("---\nkey: value\n# Title\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
	require.False(t, had)
}

func TestSplit_CRLF(t *testing.T) {
	fm, body, had, style, err := Split([]byte("---\r\nkey: value\r\n---\r\n# Title\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	assert.Equal(t, "\r\n", style.Newline)
	assert.Equal(t, []byte("key: value\r\n"), fm)
	assert.Equal(t, []byte("# Title\r\n"), body)
}

func TestSplit_EmptyBlock(t *testing.T) {
	fm, body, had, _, err := Split([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, had, _, err := Split([]byte("---\ntitle: x\n---"))
	require.NoError(t, err)
	require.True(t, had)
	assert.Equal(t, []byte("title: x\n"), fm)
	assert.Empty(t, body)
}

func TestParse_Title(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: \"  Hello World \"\ndraft: false\n---\nbody\n"))
	require.NoError(t, err)
	assert.True(t, doc.Had)
	assert.Equal(t, "Hello World", doc.Title())
	assert.Equal(t, "", doc.String("draft"))
	assert.Equal(t, []byte("body\n"), doc.Body)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: [unterminated\n---\nbody\n"))
	require.Error(t, err)
}

func TestParse_NoFrontmatter(t *testing.T) {
	doc, err := Parse([]byte("just text"))
	require.NoError(t, err)
	assert.False(t, doc.Had)
	assert.Empty(t, doc.Fields)
	assert.Empty(t, doc.Title())
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("---\ntitle: A\n---\nBody\n"))
	assert.NotEmpty(t, a)
	assert.Equal(t, a, Fingerprint([]byte("---\ntitle: A\n---\nBody\n")))
	assert.NotEqual(t, a, Fingerprint([]byte("---\ntitle: A\n---\nBody changed\n")))
	assert.NotEqual(t, a, Fingerprint([]byte("---\ntitle: B\n---\nBody\n")))
	assert.NotEmpty(t, Fingerprint([]byte("no frontmatter")))
	assert.NotEqual(t,
		Fingerprint([]byte("---\nfingerprint: one\n---\nBody\n")),
		Fingerprint([]byte("---\nfingerprint: two\n---\nBody\n")))
}
