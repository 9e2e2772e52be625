package convert

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/cqlsolr/internal/cql"
)

// AtomConverter converts one atomic clause to a Solr query fragment.
//
// Returning ("", nil) means "not applicable": the compiler then falls back to
// the default converter.
type AtomConverter interface {
	ConvertAtom(atom *cql.AtomicClause) (string, error)
}

// AtomConverterFunc adapts a function to AtomConverter.
type AtomConverterFunc func(atom *cql.AtomicClause) (string, error)

func (f AtomConverterFunc) ConvertAtom(atom *cql.AtomicClause) (string, error) {
	return f(atom)
}

// SortConverter converts one ORDER BY entry to a Solr sort fragment
// ("field asc"). Returning ("", nil) means "not applicable".
type SortConverter interface {
	SortParameter(stmt *cql.Statement, orderBy cql.OrderBy, field string) (string, error)
}

// SortConverterFunc adapts a function to SortConverter.
type SortConverterFunc func(stmt *cql.Statement, orderBy cql.OrderBy, field string) (string, error)

func (f SortConverterFunc) SortParameter(stmt *cql.Statement, orderBy cql.OrderBy, field string) (string, error) {
	return f(stmt, orderBy, field)
}

// NormalizeField returns the canonical lookup key of a CQL field: trimmed,
// NFC-normalized and lower-cased.
func NormalizeField(field string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(field)))
}

type handledKind int

const (
	handlesNone handledKind = iota
	handlesExact
	handlesPattern
)

// HandledFields declares which fields a converter takes care of beyond the
// names it is registered under. The zero value declares nothing.
type HandledFields struct {
	kind    handledKind
	exact   string
	pattern *regexp.Regexp
}

// Exact declares a single field, compared case-insensitively.
func Exact(field string) HandledFields {
	return HandledFields{kind: handlesExact, exact: NormalizeField(field)}
}

// Pattern declares every field fully matched by re. The expression is
// re-anchored so that it never matches a mere substring of a field.
func Pattern(re *regexp.Regexp) HandledFields {
	if re == nil {
		return HandledFields{kind: handlesPattern}
	}
	return HandledFields{kind: handlesPattern, pattern: regexp.MustCompile(`^(?:` + re.String() + `)$`)}
}

// CompilePattern compiles expr and declares the fields it fully matches.
func CompilePattern(expr string) (HandledFields, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return HandledFields{}, fmt.Errorf("invalid field pattern %q: %w", expr, err)
	}
	return Pattern(re), nil
}

// Regexp returns the anchored pattern of a pattern declaration, or nil.
func (h HandledFields) Regexp() *regexp.Regexp {
	if h.kind != handlesPattern {
		return nil
	}
	return h.pattern
}

// IsZero reports whether no field is declared.
func (h HandledFields) IsZero() bool {
	return h.kind == handlesNone
}

func (h HandledFields) String() string {
	switch h.kind {
	case handlesNone:
		return "none"
	case handlesExact:
		return "exact:" + h.exact
	case handlesPattern:
		if h.pattern == nil {
			return "pattern:<nil>"
		}
		return "pattern:" + h.pattern.String()
	default:
		return fmt.Sprintf("unknown(%d)", int(h.kind))
	}
}

// validate rejects declarations that can never match anything.
func (h HandledFields) validate() error {
	switch h.kind {
	case handlesNone:
		return nil
	case handlesExact:
		if h.exact == "" {
			return fmt.Errorf("exact handled field is empty")
		}
		return nil
	case handlesPattern:
		if h.pattern == nil {
			return fmt.Errorf("handled field pattern is nil")
		}
		return nil
	default:
		return fmt.Errorf("unsupported handled fields declaration %s", h)
	}
}
