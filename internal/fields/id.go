package fields

import (
	"strconv"
	"strings"

	"github.com/roach88/cqlsolr/internal/convert"
	"github.com/roach88/cqlsolr/internal/cql"
	"github.com/roach88/cqlsolr/internal/document"
	"github.com/roach88/cqlsolr/internal/solr"
)

// CurrentContent is the function denoting the document the query runs from.
const CurrentContent = "currentContent"

// IDValues renders values designating a document: a numeric content id, or
// currentContent(). The resolved document is projected to the string Solr
// indexes, then escaped.
type IDValues struct {
	Resolver document.Resolver
	Current  document.CurrentFunc

	// Project returns the indexed string of a document. An empty result makes
	// the clause not applicable.
	Project func(document.Reference) string
}

func (v *IDValues) ConvertValue(atom *cql.AtomicClause, value cql.AtomicValue) (string, error) {
	if err := checkOperator(atom); err != nil {
		return "", err
	}

	ref, err := v.resolve(atom, value)
	if err != nil {
		return "", err
	}
	if v.Project == nil {
		return "", convert.NewBugError(atom.Pos, atom.Field, "document values have no projection")
	}

	s := v.Project(ref)
	if s == "" {
		return "", nil
	}
	return solr.Escape(s), nil
}

func (v *IDValues) resolve(atom *cql.AtomicClause, value cql.AtomicValue) (document.Reference, error) {
	if cql.IsNilValue(value) {
		return document.Reference{}, convert.NewBugError(atom.Pos, atom.Field, "nil %T value", value)
	}
	switch val := value.(type) {
	case *cql.FunctionCall:
		if !strings.EqualFold(val.Name, CurrentContent) {
			return document.Reference{}, convert.NewInvalidValueError(val.Pos, atom.Field,
				"function [%s] is not supported for this field", val.Name)
		}
		return v.current(atom, val)
	case *cql.Literal:
		return v.byID(atom, val)
	default:
		return document.Reference{}, convert.NewBugError(atom.Pos, atom.Field, "unsupported value type %T", value)
	}
}

func (v *IDValues) current(atom *cql.AtomicClause, fn *cql.FunctionCall) (document.Reference, error) {
	if len(fn.Args) > 0 {
		return document.Reference{}, convert.NewInvalidValueError(fn.Pos, atom.Field,
			"function [%s] does not take any argument", fn.Name)
	}
	if v.Current == nil {
		return document.Reference{}, convert.NewBugError(fn.Pos, atom.Field, "no current document provider")
	}
	ref, err := v.Current()
	if err != nil {
		return document.Reference{}, convert.NewNotFoundError(fn.Pos, atom.Field, err,
			"the current document is not available")
	}
	return ref, nil
}

func (v *IDValues) byID(atom *cql.AtomicClause, lit *cql.Literal) (document.Reference, error) {
	// Parse the Solr rendering: signs and padding are escaped, so "-5" or
	// " 12" are not ids.
	id, err := strconv.ParseInt(solr.Escape(lit.Text), 10, 64)
	if err != nil {
		return document.Reference{}, convert.NewInvalidValueError(lit.Pos, atom.Field,
			"expected a numeric content id, got %q", lit.Text)
	}
	if v.Resolver == nil {
		return document.Reference{}, convert.NewBugError(lit.Pos, atom.Field, "no document resolver")
	}

	ref, found, err := v.Resolver.DocumentByID(id)
	if err != nil {
		return document.Reference{}, convert.NewNotFoundError(lit.Pos, atom.Field, err,
			"could not find the document matching content id [%d]", id)
	}
	if !found {
		return document.Reference{}, convert.NewNotFoundError(lit.Pos, atom.Field, nil,
			"could not find the document matching content id [%d]", id)
	}
	return ref, nil
}

// checkOperator restricts document fields to (in)equality and list membership.
func checkOperator(atom *cql.AtomicClause) error {
	switch atom.Operator {
	case cql.OpEquals, cql.OpNotEquals, cql.OpIn, cql.OpNotIn:
		return nil
	}
	return convert.NewInvalidValueError(atom.Pos, atom.Field,
		"operator %s is not supported for field [%s]", atom.Operator, atom.Field)
}
