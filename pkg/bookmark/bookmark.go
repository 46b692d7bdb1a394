package bookmark

import (
	"sort"
	"strings"
)

// Delimiter separates tags in the stored tag string. The canonical form
// keeps a leading and trailing delimiter so a substring match against
// ",tag," can never hit a tag that merely contains another as a prefix
// or suffix.
const Delimiter = ","

// EmptyTags is the canonical tag string of a bookmark with no tags.
const EmptyTags = Delimiter

// Flag is a bit set controlling per-bookmark behavior.
type Flag int

const (
	// FlagImmutable blocks automatic metadata refresh for the bookmark.
	FlagImmutable Flag = 1 << iota
	// FlagPrivate hides the bookmark from search unless private rows
	// are explicitly requested.
	FlagPrivate
)

// Has reports whether all bits of other are set.
func (f Flag) Has(other Flag) bool {
	return f&other == other
}

// Bookmark is one catalogued record.
type Bookmark struct {
	ID          int64  `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Tags        string `json:"tags"`
	Description string `json:"description"`
	Flags       Flag   `json:"flags"`
}

// Immutable reports whether automatic metadata refresh is blocked.
func (b Bookmark) Immutable() bool {
	return b.Flags.Has(FlagImmutable)
}

// Private reports whether the bookmark is hidden from default search.
func (b Bookmark) Private() bool {
	return b.Flags.Has(FlagPrivate)
}

// TagList returns the individual tags of the canonical tag string.
func (b Bookmark) TagList() []string {
	return SplitTags(b.Tags)
}

// CanonicalTags serializes tag names into the canonical stored form:
// lower-cased, trimmed, de-duplicated, lexicographically ordered and
// wrapped in delimiters. An empty set serializes to EmptyTags.
func CanonicalTags(names []string) string {
	seen := make(map[string]struct{}, len(names))
	tags := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		tags = append(tags, name)
	}
	if len(tags) == 0 {
		return EmptyTags
	}
	sort.Strings(tags)
	return Delimiter + strings.Join(tags, Delimiter) + Delimiter
}

// SplitTags returns the tags contained in a delimited tag string.
// It accepts both canonical strings and loose user input.
func SplitTags(s string) []string {
	trimmed := strings.Trim(s, Delimiter)
	if strings.TrimSpace(trimmed) == "" {
		return nil
	}
	parts := strings.Split(trimmed, Delimiter)
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tags = append(tags, part)
	}
	return tags
}
