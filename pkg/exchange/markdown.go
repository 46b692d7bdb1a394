package exchange

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/averin/marque/pkg/bookmark"
)

// markdownLink matches one bookmark line: a markdown link, optionally
// followed by the tags in an HTML comment.
var markdownLink = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)(?:\s*<!--\s*(.*?)\s*-->)?`)

// ExportMarkdown writes one markdown link per line with the tags in a
// trailing comment.
func ExportMarkdown(w io.Writer, records []bookmark.Bookmark) error {
	bw := bufio.NewWriter(w)
	for _, b := range records {
		if tagNames := b.TagList(); len(tagNames) > 0 {
			fmt.Fprintf(bw, "[%s](%s) <!-- %s -->\n", b.Title, b.URL, strings.Join(tagNames, ","))
		} else {
			fmt.Fprintf(bw, "[%s](%s)\n", b.Title, b.URL)
		}
	}
	return bw.Flush()
}

// ImportMarkdown reads markdown link lines. Lines without a link are
// skipped, so a hand-kept list with headings imports cleanly.
func ImportMarkdown(r io.Reader) ([]bookmark.Bookmark, error) {
	scanner := bufio.NewScanner(r)
	var records []bookmark.Bookmark
	for scanner.Scan() {
		m := markdownLink.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		records = append(records, bookmark.Bookmark{
			URL:   m[2],
			Title: strings.TrimSpace(m[1]),
			Tags:  bookmark.CanonicalTags(bookmark.SplitTags(m[3])),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read markdown: %w", err)
	}
	return records, nil
}
