// Package tags parses tag expressions and applies them to tag sets.
//
// An expression is a comma-separated list of segments. A segment starting
// with '+' adds a tag, '-' removes one, '~old:new' replaces one, and a
// bare segment adds like '+'. Segments apply left to right over the same
// working set, so "+urgent,-urgent" leaves the set without "urgent".
package tags

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMalformedExpression is returned when a tag expression cannot be
// parsed: an empty segment, a replace segment without ':', or a segment
// whose tag name is blank.
var ErrMalformedExpression = errors.New("malformed tag expression")

// Kind identifies one tag operation variant.
type Kind string

const (
	// KindAdd inserts a tag if absent.
	KindAdd Kind = "add"
	// KindRemove deletes a tag if present; removing an absent tag is
	// not an error.
	KindRemove Kind = "remove"
	// KindReplace swaps one tag for another; when the original is
	// absent nothing happens, the replacement is not inserted.
	KindReplace Kind = "replace"
	// KindSet is an unprefixed segment, semantically identical to
	// KindAdd.
	KindSet Kind = "set"
)

// Operation is one parsed instruction from a tag expression.
type Operation struct {
	Kind Kind
	Name string // target of add/remove/set
	From string // replace source
	To   string // replace target
}

// Parse turns a tag expression into an ordered sequence of operations.
// Tag names are lower-cased here so later comparisons are
// case-insensitive.
func Parse(expr string) ([]Operation, error) {
	segments := strings.Split(expr, ",")
	ops := make([]Operation, 0, len(segments))

	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			return nil, fmt.Errorf("%w: empty segment", ErrMalformedExpression)
		}

		switch segment[0] {
		case '+':
			name := normalize(segment[1:])
			if name == "" {
				return nil, fmt.Errorf("%w: %q has no tag name", ErrMalformedExpression, segment)
			}
			ops = append(ops, Operation{Kind: KindAdd, Name: name})
		case '-':
			name := normalize(segment[1:])
			if name == "" {
				return nil, fmt.Errorf("%w: %q has no tag name", ErrMalformedExpression, segment)
			}
			ops = append(ops, Operation{Kind: KindRemove, Name: name})
		case '~':
			rest := segment[1:]
			sep := strings.Index(rest, ":")
			if sep < 0 {
				return nil, fmt.Errorf("%w: replace segment %q lacks ':'", ErrMalformedExpression, segment)
			}
			from := normalize(rest[:sep])
			to := normalize(rest[sep+1:])
			if from == "" || to == "" {
				return nil, fmt.Errorf("%w: replace segment %q has a blank side", ErrMalformedExpression, segment)
			}
			ops = append(ops, Operation{Kind: KindReplace, From: from, To: to})
		default:
			ops = append(ops, Operation{Kind: KindSet, Name: normalize(segment)})
		}
	}

	return ops, nil
}

// Apply runs the operations left to right over the current tag set and
// returns the resulting tags sorted lexicographically. Applying the same
// operations to the result yields the result again.
func Apply(current []string, ops []Operation) []string {
	working := make(map[string]struct{}, len(current))
	for _, tag := range current {
		tag = normalize(tag)
		if tag == "" {
			continue
		}
		working[tag] = struct{}{}
	}

	for _, op := range ops {
		switch op.Kind {
		case KindAdd, KindSet:
			working[op.Name] = struct{}{}
		case KindRemove:
			delete(working, op.Name)
		case KindReplace:
			if _, ok := working[op.From]; ok {
				delete(working, op.From)
				working[op.To] = struct{}{}
			}
		}
	}

	result := make([]string, 0, len(working))
	for tag := range working {
		result = append(result, tag)
	}
	sort.Strings(result)
	return result
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
