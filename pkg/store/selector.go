package store

import (
	"fmt"
	"strconv"
	"strings"
)

// SelectorKind identifies how a mutation names its target rows.
type SelectorKind string

const (
	// SelectorOne targets a single explicit id; a missing id is an
	// error.
	SelectorOne SelectorKind = "one"
	// SelectorRange targets an inclusive id range; missing ids inside
	// the range are silently skipped.
	SelectorRange SelectorKind = "range"
	// SelectorAll targets every existing row.
	SelectorAll SelectorKind = "all"
)

// Selector names the rows a mutation targets. It is resolved to the
// concrete id set that exists at execution time.
type Selector struct {
	Kind SelectorKind
	ID   int64
	Lo   int64
	Hi   int64
}

// One selects a single bookmark by id.
func One(id int64) Selector {
	return Selector{Kind: SelectorOne, ID: id}
}

// Range selects the inclusive id range lo..hi.
func Range(lo, hi int64) Selector {
	if lo > hi {
		lo, hi = hi, lo
	}
	return Selector{Kind: SelectorRange, Lo: lo, Hi: hi}
}

// All selects every bookmark.
func All() Selector {
	return Selector{Kind: SelectorAll}
}

// ParseSelector reads a user-supplied selector: a bare id ("7"), an
// inclusive range ("3-9"), or "all" / "*".
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Selector{}, fmt.Errorf("empty selector")
	}
	if s == "all" || s == "*" {
		return All(), nil
	}

	if lo, hi, ok := strings.Cut(s, "-"); ok {
		loID, err := parseID(lo)
		if err != nil {
			return Selector{}, fmt.Errorf("invalid range %q: %w", s, err)
		}
		hiID, err := parseID(hi)
		if err != nil {
			return Selector{}, fmt.Errorf("invalid range %q: %w", s, err)
		}
		return Range(loID, hiID), nil
	}

	id, err := parseID(s)
	if err != nil {
		return Selector{}, err
	}
	return One(id), nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", id)
	}
	return id, nil
}

// String renders the selector the way a user would type it.
func (sel Selector) String() string {
	switch sel.Kind {
	case SelectorOne:
		return strconv.FormatInt(sel.ID, 10)
	case SelectorRange:
		return fmt.Sprintf("%d-%d", sel.Lo, sel.Hi)
	case SelectorAll:
		return "all"
	default:
		return string(sel.Kind)
	}
}
