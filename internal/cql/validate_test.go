package cql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CleanStatement(t *testing.T) {
	stmt := &Statement{
		Where: []ClauseWithNextOp{
			{
				Clause: &AtomicClause{Field: "title", Operator: OpEquals, Right: &Literal{Text: "foo"}},
				Next:   &NextOperator{IsAnd: true},
			},
			{
				Clause: &AtomicClause{Field: "type", Operator: OpIn, Right: &List{Values: []AtomicValue{
					&Literal{Text: "page"},
				}}},
			},
		},
		OrderBy: []OrderBy{{Field: "created"}},
	}

	result := Validate(stmt)

	assert.True(t, result.IsClean)
	assert.Empty(t, result.Warnings)
}

func TestValidate_NilStatement(t *testing.T) {
	result := Validate(nil)
	assert.False(t, result.IsClean)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "nil statement")
}

func TestValidate_EmptyWhere(t *testing.T) {
	result := Validate(&Statement{Pos: Pos{Line: 1, Column: 1}})
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "1:1: statement has no clause, it will match every document", result.Warnings[0])
}

func TestValidate_TrailingOperator(t *testing.T) {
	stmt := &Statement{Where: []ClauseWithNextOp{{
		Clause: &AtomicClause{Field: "title", Operator: OpEquals, Right: &Literal{Text: "a"}},
		Next:   &NextOperator{Pos: Pos{Line: 2, Column: 5}, IsAnd: true, IsNot: true},
	}}}

	result := Validate(stmt)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "2:5")
	assert.Contains(t, result.Warnings[0], "trailing AND NOT operator")
}

func TestValidate_NestedGroups(t *testing.T) {
	stmt := &Statement{Where: []ClauseWithNextOp{
		{Clause: &ClauseGroup{Clauses: []ClauseWithNextOp{
			{Clause: &ClauseGroup{}},
		}}},
	}}

	result := Validate(stmt)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "empty parenthesized group")
}

func TestValidate_AtomRules(t *testing.T) {
	tests := []struct {
		name    string
		atom    *AtomicClause
		warning string
	}{
		{
			name:    "in without list",
			atom:    &AtomicClause{Field: "type", Operator: OpIn, Right: &Literal{Text: "page"}},
			warning: "operator IN expects a value list",
		},
		{
			name:    "list with equals",
			atom:    &AtomicClause{Field: "type", Operator: OpEquals, Right: &List{}},
			warning: "operator = does not accept a value list",
		},
		{
			name:    "is with value",
			atom:    &AtomicClause{Field: "label", Operator: OpIs, Right: &Literal{Text: "foo"}},
			warning: `only compares against EMPTY, got "foo"`,
		},
		{
			name:    "missing value",
			atom:    &AtomicClause{Field: "label", Operator: OpEquals},
			warning: "operator = requires a value",
		},
		{
			name:    "missing field",
			atom:    &AtomicClause{Operator: OpEquals, Right: &Literal{Text: "x"}},
			warning: "clause without a field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(&Statement{Where: []ClauseWithNextOp{{Clause: tt.atom}}})
			require.Len(t, result.Warnings, 1)
			assert.Contains(t, result.Warnings[0], tt.warning)
		})
	}
}

func TestValidate_UnaryAcceptsEmptyKeywords(t *testing.T) {
	for _, right := range []Value{nil, &Literal{Text: "EMPTY"}, &Literal{Text: "null"}} {
		result := Validate(&Statement{Where: []ClauseWithNextOp{{
			Clause: &AtomicClause{Field: "label", Operator: OpIsNot, Right: right},
		}}})
		assert.True(t, result.IsClean, "right=%v", right)
	}
}

func TestValidate_OrderByWithoutField(t *testing.T) {
	stmt := &Statement{
		Where:   []ClauseWithNextOp{{Clause: &AtomicClause{Field: "a", Operator: OpEquals, Right: &Literal{Text: "b"}}}},
		OrderBy: []OrderBy{{Field: " "}},
	}
	result := Validate(stmt)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "order by entry without a field")
}
