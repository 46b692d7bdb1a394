package exchange

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/averin/marque/pkg/bookmark"
)

// ExportOrg writes an org-mode heading per bookmark, with the tags in
// org's :tag: suffix form.
func ExportOrg(w io.Writer, records []bookmark.Bookmark) error {
	bw := bufio.NewWriter(w)
	for _, b := range records {
		if tagNames := b.TagList(); len(tagNames) > 0 {
			fmt.Fprintf(bw, "* [[%s][%s]] :%s:\n", b.URL, b.Title, strings.Join(tagNames, ":"))
		} else {
			fmt.Fprintf(bw, "* [[%s][%s]]\n", b.URL, b.Title)
		}
	}
	return bw.Flush()
}
