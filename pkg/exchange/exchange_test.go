package exchange

import (
	"path/filepath"
	"testing"

	"github.com/averin/marque/pkg/bookmark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{path: "bookmarks.json", want: FormatJSON},
		{path: "bookmarks.html", want: FormatNetscape},
		{path: "bookmarks.htm", want: FormatNetscape},
		{path: "bookmarks.md", want: FormatMarkdown},
		{path: "bookmarks.markdown", want: FormatMarkdown},
		{path: "bookmarks.org", want: FormatOrg},
		{path: "/some/dir/Bookmarks.JSON", want: FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown extension", func(t *testing.T) {
		_, err := DetectFormat("bookmarks.csv")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestFileRoundtrip(t *testing.T) {
	records := []bookmark.Bookmark{
		{ID: 1, URL: "https://go.dev", Title: "Go", Tags: ",go,lang,"},
		{ID: 2, URL: "https://rust-lang.org", Title: "Rust", Tags: bookmark.EmptyTags},
	}

	for _, ext := range []string{".json", ".html", ".md"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bookmarks"+ext)
			require.NoError(t, ExportFile(path, records))

			imported, err := ImportFile(path)
			require.NoError(t, err)
			require.Len(t, imported, 2)
			assert.Equal(t, records[0].URL, imported[0].URL)
			assert.Equal(t, records[0].Tags, imported[0].Tags)
			assert.Equal(t, records[1].URL, imported[1].URL)
		})
	}
}

func TestImportFileRejectsOrg(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.org")
	require.NoError(t, ExportFile(path, []bookmark.Bookmark{{URL: "https://go.dev"}}))

	_, err := ImportFile(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestImportFileMissing(t *testing.T) {
	_, err := ImportFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
