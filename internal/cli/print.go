package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/averin/marque/pkg/bookmark"
	"github.com/averin/marque/pkg/store"
	"github.com/fatih/color"
)

var (
	idPaint    = color.New(color.FgBlue)
	titlePaint = color.New(color.FgGreen, color.Bold)
	urlPaint   = color.New(color.FgYellow)
	markPaint  = color.New(color.FgRed)
)

// writeRecord prints one bookmark as an indented block:
//
//	1. Title
//	   > https://url
//	   + description
//	   # tag1,tag2
func writeRecord(w io.Writer, b bookmark.Bookmark) {
	id := fmt.Sprintf("%d", b.ID)

	title := b.Title
	if title == "" {
		title = "(untitled)"
	}
	suffix := ""
	if b.Private() {
		suffix += " (private)"
	}
	if b.Immutable() {
		suffix += " (immutable)"
	}
	fmt.Fprintf(w, "%s. %s%s\n", idPaint.Sprint(id), titlePaint.Sprint(title), suffix)

	pad := strings.Repeat(" ", len(id)+2)
	fmt.Fprintf(w, "%s%s %s\n", pad, markPaint.Sprint(">"), urlPaint.Sprint(b.URL))
	if b.Description != "" {
		fmt.Fprintf(w, "%s%s %s\n", pad, markPaint.Sprint("+"), b.Description)
	}
	if tags := b.TagList(); len(tags) > 0 {
		fmt.Fprintf(w, "%s%s %s\n", pad, markPaint.Sprint("#"), strings.Join(tags, ","))
	}
}

func writeRecords(w io.Writer, records []bookmark.Bookmark) {
	for _, b := range records {
		writeRecord(w, b)
	}
}

// writeUndoReport narrates what an undo run reverted.
func writeUndoReport(w io.Writer, report store.UndoReport) {
	for _, unit := range report.Units {
		fmt.Fprintf(w, "undid %s of %d bookmark(s)\n", strings.ToLower(string(unit.Op)), unit.Rows)
		for _, remap := range unit.Remaps {
			fmt.Fprintf(w, "  id %d restored as %d\n", remap.OldID, remap.NewID)
		}
	}
	if report.Shortfall() > 0 {
		fmt.Fprintf(w, "only %d of %d operations undone; the log is empty\n", report.Undone, report.Requested)
	}
}
