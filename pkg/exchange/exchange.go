// Package exchange moves bookmarks in and out of the catalogue:
// browser-compatible Netscape HTML, JSON, Markdown and Org files.
package exchange

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/averin/marque/pkg/bookmark"
)

// ErrUnsupportedFormat indicates a file extension no codec handles.
var ErrUnsupportedFormat = errors.New("unsupported exchange format")

// Format identifies an exchange file format.
type Format string

const (
	// FormatJSON is a JSON array of bookmark records.
	FormatJSON Format = "json"
	// FormatNetscape is the Netscape bookmark file format browsers
	// export and import.
	FormatNetscape Format = "netscape"
	// FormatMarkdown is one markdown link per line.
	FormatMarkdown Format = "markdown"
	// FormatOrg is an org-mode heading per bookmark, export only.
	FormatOrg Format = "org"
)

// DetectFormat maps a file path to its exchange format by extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".html", ".htm":
		return FormatNetscape, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".org":
		return FormatOrg, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ExportFile writes records to path in the format its extension names.
func ExportFile(path string, records []bookmark.Bookmark) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	switch format {
	case FormatJSON:
		err = ExportJSON(file, records)
	case FormatNetscape:
		err = ExportNetscape(file, records)
	case FormatMarkdown:
		err = ExportMarkdown(file, records)
	case FormatOrg:
		err = ExportOrg(file, records)
	}
	if err != nil {
		return err
	}
	return file.Close()
}

// ImportFile reads records from path in the format its extension
// names. Org files are export-only.
func ImportFile(path string) ([]bookmark.Bookmark, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	switch format {
	case FormatJSON:
		return ImportJSON(file)
	case FormatNetscape:
		return ImportNetscape(file)
	case FormatMarkdown:
		return ImportMarkdown(file)
	default:
		return nil, fmt.Errorf("%w: cannot import %s files", ErrUnsupportedFormat, format)
	}
}
