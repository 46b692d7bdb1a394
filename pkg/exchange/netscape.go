package exchange

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/averin/marque/pkg/bookmark"
	"golang.org/x/net/html"
)

// ExportNetscape writes the Netscape bookmark file format every
// browser's import dialog understands.
func ExportNetscape(w io.Writer, records []bookmark.Bookmark) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "<!DOCTYPE NETSCAPE-Bookmark-file-1>")
	fmt.Fprintln(bw, "<!-- This is an automatically generated file.")
	fmt.Fprintln(bw, "     It will be read and overwritten.")
	fmt.Fprintln(bw, "     DO NOT EDIT! -->")
	fmt.Fprintln(bw, `<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">`)
	fmt.Fprintln(bw, "<TITLE>Bookmarks</TITLE>")
	fmt.Fprintln(bw, "<H1>Bookmarks</H1>")
	fmt.Fprintln(bw, "<DL><p>")

	for _, b := range records {
		fmt.Fprintf(bw, "    <DT><A HREF=\"%s\" TAGS=\"%s\" ADD_DATE=\"0\">%s</A>\n",
			html.EscapeString(b.URL),
			html.EscapeString(strings.Join(b.TagList(), ",")),
			html.EscapeString(b.Title))
		if b.Description != "" {
			fmt.Fprintf(bw, "    <DD>%s\n", html.EscapeString(b.Description))
		}
	}

	fmt.Fprintln(bw, "</DL><p>")
	return bw.Flush()
}

// ImportNetscape reads a Netscape bookmark file. Folder headings build
// up the tag set of the anchors below them; an explicit TAGS attribute
// wins over folders. Pseudo URLs browsers keep in their exports
// (place:, javascript:) are skipped.
func ImportNetscape(r io.Reader) ([]bookmark.Bookmark, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bookmark file: %w", err)
	}

	var records []bookmark.Bookmark
	var folders []string
	var pending string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h3":
				pending = collapseText(n)
				return
			case "a":
				if b, ok := anchorRecord(n, folders); ok {
					records = append(records, b)
				}
				return
			case "dl":
				folder := pending
				pending = ""
				if folder != "" {
					folders = append(folders, folder)
				}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c)
				}
				if folder != "" {
					folders = folders[:len(folders)-1]
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return records, nil
}

func anchorRecord(n *html.Node, folders []string) (bookmark.Bookmark, bool) {
	href := attrValue(n, "href")
	if href == "" || strings.HasPrefix(href, "place:") || strings.HasPrefix(href, "javascript:") {
		return bookmark.Bookmark{}, false
	}

	tagNames := bookmark.SplitTags(attrValue(n, "tags"))
	if len(tagNames) == 0 {
		tagNames = folders
	}

	return bookmark.Bookmark{
		URL:         href,
		Title:       collapseText(n),
		Tags:        bookmark.CanonicalTags(tagNames),
		Description: followingDescription(n),
	}, true
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// collapseText flattens the text below n into one space-separated
// string.
func collapseText(n *html.Node) string {
	var sb strings.Builder
	var gather func(*html.Node)
	gather = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			gather(c)
		}
	}
	gather(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// followingDescription picks up the <DD> line browsers place right
// after a bookmark's <DT>.
func followingDescription(n *html.Node) string {
	dt := n.Parent
	if dt == nil || dt.Data != "dt" {
		return ""
	}
	for sib := dt.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type != html.ElementNode {
			continue
		}
		if sib.Data == "dd" {
			return collapseText(sib)
		}
		return ""
	}
	return ""
}
