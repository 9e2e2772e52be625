// Package solr holds the pieces of Solr (Lucene) query syntax the converters
// emit: escaping, grouping and the boolean combinators.
package solr

import (
	"strings"
	"unicode"
)

const (
	And = " AND "
	Or  = " OR "

	// Not prefixes a clause to exclude its matches.
	Not = "-"

	// MatchAll is the query every document satisfies. A purely negative
	// sub-query only matches inside a group when it is anchored to it.
	MatchAll = "*:*"

	// PathSeparator is the escaped form of "/" as it appears in facet values.
	PathSeparator = `\/`
)

// Escape backslash-escapes every character that has a meaning in the Lucene
// query syntax, and whitespace, so that s is matched as a single term.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isMetachar(r) || unicode.IsSpace(r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isMetachar(r rune) bool {
	switch r {
	case '\\', '+', '-', '!', '(', ')', ':', '^', '[', ']', '"', '{', '}', '~', '*', '?', '|', '&', ';', '/':
		return true
	}
	return false
}

// Group wraps a query in parentheses.
func Group(s string) string {
	return "(" + s + ")"
}

// Field returns "field:value". The value is emitted as is.
func Field(field, value string) string {
	return field + ":" + value
}

// Exclude returns a query matching every document not matched by q.
func Exclude(q string) string {
	return MatchAll + " " + Not + q
}

// Range returns a range query on field. Empty bounds are open ("*") and
// take the bracket of the bounded side, so "<= 5" renders as [* TO 5].
func Range(field, lower, upper string, includeLower, includeUpper bool) string {
	if lower == "" {
		lower = "*"
		includeLower = includeUpper
	}
	if upper == "" {
		upper = "*"
		includeUpper = includeLower
	}
	lb, rb := "{", "}"
	if includeLower {
		lb = "["
	}
	if includeUpper {
		rb = "]"
	}
	return field + ":" + lb + lower + " TO " + upper + rb
}

// SortClause returns the "field asc|desc" fragment of a sort parameter.
func SortClause(field string, desc bool) string {
	if desc {
		return field + " desc"
	}
	return field + " asc"
}
