// Package query builds executable search plans from user keywords.
//
// A plan is pure data: the mode, the combination rule, and either an
// FTS5 match expression or a SQL predicate with bind arguments. The
// store decides how to run it; the builder never touches the database.
package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Mode selects how keywords match bookmark fields.
type Mode string

const (
	// ModeNormal matches whole words via the full-text index.
	ModeNormal Mode = "normal"
	// ModeDeep matches substrings of url, title, tags and description.
	ModeDeep Mode = "deep"
	// ModeRegex compiles each keyword as an independent regular
	// expression over the same fields.
	ModeRegex Mode = "regex"
	// ModeTags matches keywords against whole tags only, never
	// substrings of a tag.
	ModeTags Mode = "tags"
)

// ErrNoKeywords is returned when Build receives nothing to search for.
var ErrNoKeywords = errors.New("no search keywords given")

// Plan is the executable description of one search.
type Plan struct {
	Mode     Mode
	MatchAll bool
	Keywords []string

	// Match holds the FTS5 expression for ModeNormal.
	Match string
	// Where holds the SQL predicate for the other modes, with bind
	// values in Args referenced as ?1..?n.
	Where string
	Args  []any
}

// Build turns keywords plus mode flags into a Plan. Keywords that are
// blank after trimming are dropped; regex keywords are compiled here so
// an invalid pattern fails the build instead of the execution.
func Build(keywords []string, mode Mode, matchAll bool) (*Plan, error) {
	kept := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			continue
		}
		kept = append(kept, kw)
	}
	if len(kept) == 0 {
		return nil, ErrNoKeywords
	}

	plan := &Plan{Mode: mode, MatchAll: matchAll, Keywords: kept}

	switch mode {
	case ModeNormal:
		plan.Match = ftsExpression(kept, matchAll)
	case ModeDeep:
		preds := make([]string, 0, len(kept))
		for _, kw := range kept {
			ph := plan.bind("%" + escapeLike(kw) + "%")
			preds = append(preds, fieldPredicate("LIKE", ph, likeEscape))
		}
		plan.Where = combine(preds, matchAll)
	case ModeRegex:
		preds := make([]string, 0, len(kept))
		for _, kw := range kept {
			if _, err := regexp.Compile(kw); err != nil {
				return nil, fmt.Errorf("invalid regex %q: %w", kw, err)
			}
			ph := plan.bind(kw)
			preds = append(preds, fieldPredicate("REGEXP", ph, ""))
		}
		plan.Where = combine(preds, matchAll)
	case ModeTags:
		preds := make([]string, 0, len(kept))
		for _, kw := range kept {
			token := strings.ToLower(strings.TrimSpace(kw))
			ph := plan.bind("%," + escapeLike(token) + ",%")
			preds = append(preds, "tags LIKE "+ph+likeEscape)
		}
		plan.Where = combine(preds, matchAll)
	default:
		return nil, fmt.Errorf("unknown search mode %q", mode)
	}

	return plan, nil
}

// IsNativeExpression reports whether a keyword already carries FTS5
// query syntax and should be passed to the engine verbatim.
func IsNativeExpression(kw string) bool {
	return strings.ContainsRune(kw, '"') ||
		strings.Contains(kw, " OR ") ||
		strings.Contains(kw, " AND ")
}

// ftsExpression renders the MATCH string for normal mode. A single
// keyword that is already a native expression goes through untouched so
// its operators keep their meaning and no escaping is applied twice.
func ftsExpression(keywords []string, matchAll bool) string {
	if len(keywords) == 1 && IsNativeExpression(keywords[0]) {
		return keywords[0]
	}

	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		quoted = append(quoted, `"`+strings.ReplaceAll(kw, `"`, `""`)+`"`)
	}
	if matchAll {
		return strings.Join(quoted, " AND ")
	}
	return strings.Join(quoted, " OR ")
}

// bind appends a value and returns its ?n placeholder. Numbered
// placeholders let one value serve the four field comparisons of a
// single keyword.
func (p *Plan) bind(value any) string {
	p.Args = append(p.Args, value)
	return fmt.Sprintf("?%d", len(p.Args))
}

const likeEscape = ` ESCAPE '\'`

func fieldPredicate(op, placeholder, suffix string) string {
	parts := []string{
		"url " + op + " " + placeholder + suffix,
		"title " + op + " " + placeholder + suffix,
		"tags " + op + " " + placeholder + suffix,
		"desc " + op + " " + placeholder + suffix,
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func combine(preds []string, matchAll bool) string {
	if matchAll {
		return strings.Join(preds, " AND ")
	}
	return strings.Join(preds, " OR ")
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
