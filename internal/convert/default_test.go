package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cqlsolr/internal/cql"
)

func lit(s string) *cql.Literal {
	return &cql.Literal{Text: s}
}

func atom(field string, op cql.Operator, right cql.Value) *cql.AtomicClause {
	return &cql.AtomicClause{Field: field, Operator: op, Right: right}
}

func TestFieldConverter_Operators(t *testing.T) {
	list := &cql.List{Values: []cql.AtomicValue{lit("page"), lit("blog post")}}

	tests := []struct {
		name string
		atom *cql.AtomicClause
		want string
	}{
		{"equals", atom("title", cql.OpEquals, lit("a")), "title:a"},
		{"not equals", atom("title", cql.OpNotEquals, lit("a")), "*:* -title:a"},
		{"contains", atom("text", cql.OpContains, lit("foo")), "text:*foo*"},
		{"not contains", atom("text", cql.OpNotContains, lit("foo")), "*:* -text:*foo*"},
		{"less", atom("created", cql.OpLess, lit("2024")), "created:{* TO 2024}"},
		{"less or equal", atom("created", cql.OpLessOrEqual, lit("2024")), "created:[* TO 2024]"},
		{"greater", atom("created", cql.OpGreater, lit("2024")), "created:{2024 TO *}"},
		{"greater or equal", atom("created", cql.OpGreaterOrEqual, lit("2024")), "created:[2024 TO *]"},
		{"in", atom("type", cql.OpIn, list), `type:(page OR blog\ post)`},
		{"not in", atom("type", cql.OpNotIn, list), `*:* -type:(page OR blog\ post)`},
		{"in single value", atom("type", cql.OpIn, lit("page")), "type:(page)"},
		{"is empty", atom("label", cql.OpIs, nil), "*:* -label:*"},
		{"is EMPTY keyword", atom("label", cql.OpIs, lit("EMPTY")), "*:* -label:*"},
		{"is not empty", atom("label", cql.OpIsNot, lit("null")), "label:*"},
		{"uppercase field", atom("Title", cql.OpEquals, lit("a")), "title:a"},
		{"empty literal", atom("title", cql.OpEquals, lit("")), `title:""`},
	}

	c := &FieldConverter{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ConvertAtom(tt.atom)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldConverter_EscapesEveryMetacharacter(t *testing.T) {
	c := &FieldConverter{}

	got, err := c.ConvertAtom(atom("title", cql.OpEquals, lit(`a+b-c!(d):e^[f]"g{h}~i*j?k|l&m;n/o\p q`)))
	require.NoError(t, err)
	assert.Equal(t, `title:a\+b\-c\!\(d\)\:e\^\[f\]\"g\{h\}\~i\*j\?k\|l\&m\;n\/o\\p\ q`, got)
}

func TestFieldConverter_FieldMapping(t *testing.T) {
	c := NewFieldConverter(map[string]string{"Title": "title_", "text": "fulltext"})

	got, err := c.ConvertAtom(atom("TITLE", cql.OpEquals, lit("x")))
	require.NoError(t, err)
	assert.Equal(t, "title_:x", got)

	got, err = c.ConvertAtom(atom("my field", cql.OpEquals, lit("x")))
	require.NoError(t, err)
	assert.Equal(t, `my\ field:x`, got)
}

func TestFieldConverter_SeveralSolrFields(t *testing.T) {
	c := &FieldConverter{SolrFields: []string{"title", "name"}}

	got, err := c.ConvertAtom(atom("title", cql.OpEquals, lit("x")))
	require.NoError(t, err)
	assert.Equal(t, "(title:x OR name:x)", got)

	got, err = c.ConvertAtom(atom("title", cql.OpNotEquals, lit("x")))
	require.NoError(t, err)
	assert.Equal(t, "*:* -(title:x OR name:x)", got)
}

func TestFieldConverter_InvalidValues(t *testing.T) {
	pos := cql.Pos{Line: 1, Column: 9}
	tests := []struct {
		name string
		atom *cql.AtomicClause
		want string
	}{
		{"function call", atom("title", cql.OpEquals, &cql.FunctionCall{Pos: pos, Name: "now"}), "function [now] is not supported"},
		{"missing value", atom("title", cql.OpEquals, nil), "operator = requires a value"},
		{"list with equals", atom("title", cql.OpEquals, &cql.List{Pos: pos}), "does not accept a value list"},
		{"empty list", atom("type", cql.OpIn, &cql.List{Pos: pos}), "operator IN requires a value list"},
		{"is with value", atom("label", cql.OpIs, &cql.Literal{Pos: pos, Text: "x"}), "operator IS only accepts EMPTY"},
	}

	c := &FieldConverter{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ConvertAtom(tt.atom)
			require.Error(t, err)
			assert.True(t, IsInvalidValue(err), "got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFieldConverter_TypedNilValuesAreBugs(t *testing.T) {
	c := &FieldConverter{}

	tests := []struct {
		name string
		atom *cql.AtomicClause
		want string
	}{
		{"literal", atom("title", cql.OpEquals, (*cql.Literal)(nil)), "nil *cql.Literal"},
		{"function call", atom("title", cql.OpEquals, (*cql.FunctionCall)(nil)), "nil *cql.FunctionCall"},
		{"list", atom("type", cql.OpIn, (*cql.List)(nil)), "nil *cql.List"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() { _, err = c.ConvertAtom(tt.atom) })
			require.Error(t, err)
			assert.True(t, IsBug(err), "got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLiteralValues_NilLiteral(t *testing.T) {
	_, err := LiteralValues{}.ConvertValue(atom("title", cql.OpEquals, lit("x")), (*cql.Literal)(nil))
	require.Error(t, err)
	assert.True(t, IsBug(err))
	assert.Contains(t, err.Error(), "nil *cql.Literal")
}

// skipValues is not applicable to any value.
type skipValues struct{}

func (skipValues) ConvertValue(*cql.AtomicClause, cql.AtomicValue) (string, error) {
	return "", nil
}

func TestFieldConverter_NotApplicableValue(t *testing.T) {
	c := &FieldConverter{Values: skipValues{}}

	got, err := c.ConvertAtom(atom("id", cql.OpEquals, lit("1")))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = c.ConvertAtom(atom("id", cql.OpIn, &cql.List{Values: []cql.AtomicValue{lit("1")}}))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSortTable(t *testing.T) {
	table := NewSortTable(map[string]string{"Title": "title_sort", "blank": ""})

	got, err := table.SortParameter(nil, cql.OrderBy{Field: "TITLE", Desc: true}, "TITLE")
	require.NoError(t, err)
	assert.Equal(t, "title_sort desc", got)

	got, err = table.SortParameter(nil, cql.OrderBy{Field: "blank"}, "blank")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = table.SortParameter(nil, cql.OrderBy{Field: "other"}, "other")
	require.NoError(t, err)
	assert.Empty(t, got)
}
