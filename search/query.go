package search

import (
	"fmt"
	"regexp"
	"strings"
)

// Role selects how a query participates when a document is evaluated.
type Role int

const (
	// RoleParallel queries each report every occurrence they find in a
	// document that passed all filters.
	RoleParallel Role = iota

	// RoleFilter queries gate documents. A document missing a filter term
	// on every page is rejected outright, and filter occurrences are never
	// reported on their own.
	RoleFilter
)

// String returns the role name used in logs and reports.
func (r Role) String() string {
	if r == RoleFilter {
		return "filter"
	}
	return "parallel"
}

// Query is a single search term with its matching options.
type Query struct {
	// Text is the term as the user typed it. It is normalized before use,
	// so "multi word term" and "multiwordterm" are the same query.
	Text string

	// IsRegex interprets Text as a regular expression instead of a
	// literal substring.
	IsRegex bool

	// Role picks filter or parallel behavior. The zero value is parallel.
	Role Role

	// CaseSensitive disables the default case folding.
	CaseSensitive bool

	// HighlightColor is the hex color the result browser uses to mark
	// occurrences of this query. Empty means the caller's default.
	HighlightColor string
}

// compiledQuery is a Query prepared for page scanning: its text normalized,
// regex compiled, literal pre-folded.
type compiledQuery struct {
	Query
	re      *regexp.Regexp // set when IsRegex
	literal string         // set when !IsRegex, lowercased unless CaseSensitive
	empty   bool           // normalized text was empty, matches nothing
}

// compileQuery normalizes q and prepares its matcher. Regex queries that do
// not compile return an error wrapping ErrInvalidPattern.
func compileQuery(q Query) (compiledQuery, error) {
	cq := compiledQuery{Query: q}
	norm := Normalize(q.Text)
	if norm == "" {
		// An all-separator query would otherwise match between every pair
		// of runes. Treat it as matching nothing.
		cq.empty = true
		return cq, nil
	}
	if q.IsRegex {
		pattern := norm
		if !q.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return cq, fmt.Errorf("%w %q: %v", ErrInvalidPattern, q.Text, err)
		}
		cq.re = re
		return cq, nil
	}
	if q.CaseSensitive {
		cq.literal = norm
	} else {
		cq.literal = strings.ToLower(norm)
	}
	return cq, nil
}

// compileQueries prepares every query up front so a bad pattern fails the
// whole search before any file is opened.
func compileQueries(queries []Query) ([]compiledQuery, error) {
	compiled := make([]compiledQuery, 0, len(queries))
	for _, q := range queries {
		cq, err := compileQuery(q)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, cq)
	}
	return compiled, nil
}
