package exchange

import (
	"bytes"
	"strings"
	"testing"

	"github.com/averin/marque/pkg/bookmark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportMarkdown(t *testing.T) {
	var buf bytes.Buffer
	err := ExportMarkdown(&buf, []bookmark.Bookmark{
		{URL: "https://go.dev", Title: "Go", Tags: ",go,lang,"},
		{URL: "https://rust-lang.org", Title: "Rust", Tags: bookmark.EmptyTags},
	})
	require.NoError(t, err)

	assert.Equal(t, "[Go](https://go.dev) <!-- go,lang -->\n[Rust](https://rust-lang.org)\n", buf.String())
}

func TestImportMarkdown(t *testing.T) {
	imported, err := ImportMarkdown(strings.NewReader(`# Reading list

[Go](https://go.dev) <!-- go,lang -->
plain prose line without a link
- [Rust](https://rust-lang.org)
[](https://untitled.example) <!-- misc -->
`))
	require.NoError(t, err)
	require.Len(t, imported, 3)

	assert.Equal(t, "https://go.dev", imported[0].URL)
	assert.Equal(t, "Go", imported[0].Title)
	assert.Equal(t, ",go,lang,", imported[0].Tags)

	assert.Equal(t, "Rust", imported[1].Title)
	assert.Equal(t, bookmark.EmptyTags, imported[1].Tags)

	assert.Equal(t, "", imported[2].Title)
	assert.Equal(t, ",misc,", imported[2].Tags)
}

func TestMarkdownRoundtrip(t *testing.T) {
	original := []bookmark.Bookmark{
		{URL: "https://go.dev", Title: "The Go Programming Language", Tags: ",go,lang,"},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportMarkdown(&buf, original))

	imported, err := ImportMarkdown(&buf)
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assert.Equal(t, original[0].URL, imported[0].URL)
	assert.Equal(t, original[0].Title, imported[0].Title)
	assert.Equal(t, original[0].Tags, imported[0].Tags)
}

func TestExportOrg(t *testing.T) {
	var buf bytes.Buffer
	err := ExportOrg(&buf, []bookmark.Bookmark{
		{URL: "https://go.dev", Title: "Go", Tags: ",go,lang,"},
		{URL: "https://rust-lang.org", Title: "Rust", Tags: bookmark.EmptyTags},
	})
	require.NoError(t, err)

	assert.Equal(t, "* [[https://go.dev][Go]] :go:lang:\n* [[https://rust-lang.org][Rust]]\n", buf.String())
}
