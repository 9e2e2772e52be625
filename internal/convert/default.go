package convert

import (
	"strings"

	"github.com/roach88/cqlsolr/internal/cql"
	"github.com/roach88/cqlsolr/internal/solr"
)

// ValueConverter renders one right-hand value of a clause as a Solr term.
// Returning ("", nil) makes the whole clause "not applicable".
type ValueConverter interface {
	ConvertValue(atom *cql.AtomicClause, value cql.AtomicValue) (string, error)
}

// LiteralValues renders literals escaped and rejects function calls.
type LiteralValues struct{}

func (LiteralValues) ConvertValue(atom *cql.AtomicClause, value cql.AtomicValue) (string, error) {
	if cql.IsNilValue(value) {
		return "", NewBugError(atom.Pos, atom.Field, "nil %T value", value)
	}
	switch v := value.(type) {
	case *cql.Literal:
		if v.Text == "" {
			return `""`, nil
		}
		return solr.Escape(v.Text), nil
	case *cql.FunctionCall:
		return "", NewInvalidValueError(v.Pos, atom.Field,
			"function [%s] is not supported for this field", v.Name)
	default:
		return "", NewBugError(atom.Pos, atom.Field, "unsupported value type %T", value)
	}
}

// FieldConverter emits "field op value" for one or more Solr fields.
//
// Per operator, with v the converted value:
//
//	=  f:v          !=  *:* -f:v
//	~  f:*v*        !~  *:* -f:*v*
//	<  f:{* TO v}   <=  f:[* TO v]
//	>  f:{v TO *}   >=  f:[v TO *]
//	IN f:(v1 OR v2) NOT IN *:* -f:(v1 OR v2)
//	IS EMPTY *:* -f:*   IS NOT EMPTY f:*
//
// Several Solr fields are OR-ed together before any negation is applied.
// The zero value is the generic default converter.
type FieldConverter struct {
	// SolrFields are the target fields. When empty, the field comes from
	// FieldMap, or is the normalized CQL field name itself.
	SolrFields []string

	// FieldMap maps normalized CQL field names to Solr fields.
	FieldMap map[string]string

	// Values renders the right-hand values. Nil means LiteralValues.
	Values ValueConverter
}

// NewFieldConverter creates the generic converter with a field mapping.
func NewFieldConverter(fieldMap map[string]string) *FieldConverter {
	m := make(map[string]string, len(fieldMap))
	for k, v := range fieldMap {
		m[NormalizeField(k)] = v
	}
	return &FieldConverter{FieldMap: m}
}

func (c *FieldConverter) ConvertAtom(atom *cql.AtomicClause) (string, error) {
	term, negated, err := c.term(atom)
	if err != nil || term == "" {
		return "", err
	}

	fields := c.solrFields(atom)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+":"+term)
	}

	q := parts[0]
	if len(parts) > 1 {
		q = solr.Group(strings.Join(parts, solr.Or))
	}
	if negated {
		return solr.Exclude(q), nil
	}
	return q, nil
}

func (c *FieldConverter) solrFields(atom *cql.AtomicClause) []string {
	if len(c.SolrFields) > 0 {
		return c.SolrFields
	}
	key := NormalizeField(atom.Field)
	if mapped, ok := c.FieldMap[key]; ok {
		return []string{mapped}
	}
	return []string{solr.Escape(key)}
}

func (c *FieldConverter) values() ValueConverter {
	if c.Values == nil {
		return LiteralValues{}
	}
	return c.Values
}

// term returns what follows "field:" and whether the clause is negated.
func (c *FieldConverter) term(atom *cql.AtomicClause) (string, bool, error) {
	op := atom.Operator

	if atom.Right != nil && cql.IsNilValue(atom.Right) {
		return "", false, NewBugError(atom.Pos, atom.Field, "nil %T right-hand value", atom.Right)
	}

	if op.IsUnary() {
		if lit, ok := atom.Right.(*cql.Literal); atom.Right != nil && (!ok || !cql.IsEmptyKeyword(lit.Text)) {
			return "", false, NewInvalidValueError(atom.Right.Position(), atom.Field,
				"operator %s only accepts EMPTY", op)
		}
		return "*", op == cql.OpIs, nil
	}

	if op.IsList() {
		var values []cql.AtomicValue
		switch right := atom.Right.(type) {
		case *cql.List:
			values = right.Values
		case cql.AtomicValue:
			values = []cql.AtomicValue{right}
		}
		if len(values) == 0 {
			return "", false, NewInvalidValueError(atom.Pos, atom.Field, "operator %s requires a value list", op)
		}
		terms := make([]string, 0, len(values))
		for _, v := range values {
			t, err := c.values().ConvertValue(atom, v)
			if err != nil || t == "" {
				return "", false, err
			}
			terms = append(terms, t)
		}
		return solr.Group(strings.Join(terms, solr.Or)), op == cql.OpNotIn, nil
	}

	var value cql.AtomicValue
	switch right := atom.Right.(type) {
	case nil:
		return "", false, NewInvalidValueError(atom.Pos, atom.Field, "operator %s requires a value", op)
	case *cql.List:
		return "", false, NewInvalidValueError(right.Pos, atom.Field, "operator %s does not accept a value list", op)
	case cql.AtomicValue:
		value = right
	default:
		return "", false, NewBugError(atom.Pos, atom.Field, "unsupported right-hand value %T", atom.Right)
	}

	v, err := c.values().ConvertValue(atom, value)
	if err != nil || v == "" {
		return "", false, err
	}

	switch op {
	case cql.OpEquals:
		return v, false, nil
	case cql.OpNotEquals:
		return v, true, nil
	case cql.OpContains:
		return "*" + v + "*", false, nil
	case cql.OpNotContains:
		return "*" + v + "*", true, nil
	case cql.OpLess:
		return rangeTerm("", v, false, false), false, nil
	case cql.OpLessOrEqual:
		return rangeTerm("", v, true, true), false, nil
	case cql.OpGreater:
		return rangeTerm(v, "", false, false), false, nil
	case cql.OpGreaterOrEqual:
		return rangeTerm(v, "", true, true), false, nil
	default:
		return "", false, NewBugError(atom.Pos, atom.Field, "unsupported operator %s", op)
	}
}

// rangeTerm is solr.Range without the "field:" prefix.
func rangeTerm(lower, upper string, includeLower, includeUpper bool) string {
	return strings.TrimPrefix(solr.Range("", lower, upper, includeLower, includeUpper), ":")
}

// SortTable is the default sort converter: it maps normalized CQL fields to
// Solr sort fields. Fields missing from the table are not applicable.
type SortTable map[string]string

// NewSortTable normalizes the keys of fields.
func NewSortTable(fields map[string]string) SortTable {
	t := make(SortTable, len(fields))
	for k, v := range fields {
		t[NormalizeField(k)] = v
	}
	return t
}

func (t SortTable) SortParameter(_ *cql.Statement, orderBy cql.OrderBy, field string) (string, error) {
	solrField, ok := t[NormalizeField(field)]
	if !ok || solrField == "" {
		return "", nil
	}
	return solr.SortClause(solrField, orderBy.Desc), nil
}
