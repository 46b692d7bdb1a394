package exchange

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/averin/marque/pkg/bookmark"
	"github.com/xeipuuv/gojsonschema"
)

// importSchema is the JSON Schema an import document must satisfy.
const importSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["url"],
    "properties": {
      "id": { "type": "integer" },
      "url": { "type": "string", "minLength": 1 },
      "title": { "type": "string" },
      "tags": {
        "type": "array",
        "items": { "type": "string" }
      },
      "description": { "type": "string" },
      "private": { "type": "boolean" },
      "immutable": { "type": "boolean" }
    }
  }
}`

// record is the interchange shape of one bookmark. Tags travel as a
// plain list instead of the delimiter-wrapped storage form.
type record struct {
	ID          int64    `json:"id,omitempty"`
	URL         string   `json:"url"`
	Title       string   `json:"title,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
	Private     bool     `json:"private,omitempty"`
	Immutable   bool     `json:"immutable,omitempty"`
}

func toRecord(b bookmark.Bookmark) record {
	return record{
		ID:          b.ID,
		URL:         b.URL,
		Title:       b.Title,
		Tags:        b.TagList(),
		Description: b.Description,
		Private:     b.Private(),
		Immutable:   b.Immutable(),
	}
}

func fromRecord(r record) bookmark.Bookmark {
	var flags bookmark.Flag
	if r.Private {
		flags |= bookmark.FlagPrivate
	}
	if r.Immutable {
		flags |= bookmark.FlagImmutable
	}
	return bookmark.Bookmark{
		ID:          r.ID,
		URL:         r.URL,
		Title:       r.Title,
		Tags:        bookmark.CanonicalTags(r.Tags),
		Description: r.Description,
		Flags:       flags,
	}
}

// ExportJSON writes records as an indented JSON array.
func ExportJSON(w io.Writer, records []bookmark.Bookmark) error {
	out := make([]record, 0, len(records))
	for _, b := range records {
		out = append(out, toRecord(b))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

// ImportJSON reads a JSON array of bookmark records, validating the
// document against the import schema first.
func ImportJSON(r io.Reader) ([]bookmark.Bookmark, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read json: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(importSchema),
		gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to validate json: %w", err)
	}
	if !result.Valid() {
		var errMsg string
		for i, err := range result.Errors() {
			if i > 0 {
				errMsg += "; "
			}
			errMsg += err.String()
		}
		return nil, fmt.Errorf("invalid import document: %s", errMsg)
	}

	var in []record
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse json: %w", err)
	}

	records := make([]bookmark.Bookmark, 0, len(in))
	for _, r := range in {
		records = append(records, fromRecord(r))
	}
	return records, nil
}
