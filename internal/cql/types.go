package cql

import (
	"fmt"
	"strings"
)

// Pos is the source position of a node, as reported by the parser.
// The zero value means "unknown".
type Pos struct {
	Line   int
	Column int
}

// IsValid reports whether the position is known.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Statement is the root of a parsed CQL query.
type Statement struct {
	Pos     Pos
	Where   []ClauseWithNextOp
	OrderBy []OrderBy
}

// Clause is either an *AtomicClause or a *ClauseGroup.
//
// This is a sealed interface - only types in this package implement it, so
// consumers can switch over it exhaustively.
type Clause interface {
	Position() Pos
	clauseNode()
}

// ClauseWithNextOp pairs a clause with the operator joining it to the next
// clause of the same list. Next is nil on the last clause; if a parser sets
// it anyway, it is ignored.
type ClauseWithNextOp struct {
	Clause Clause
	Next   *NextOperator
}

// NextOperator joins two clauses. IsAnd selects AND (true) or OR (false),
// IsNot negates the clause that follows. All four combinations are legal.
type NextOperator struct {
	Pos   Pos
	IsAnd bool
	IsNot bool
}

func (o NextOperator) String() string {
	s := "OR"
	if o.IsAnd {
		s = "AND"
	}
	if o.IsNot {
		s += " NOT"
	}
	return s
}

// AtomicClause is a single "field op value" predicate. Right is nil for
// unary predicates such as "field IS EMPTY".
type AtomicClause struct {
	Pos      Pos
	Field    string
	Operator Operator
	Right    Value
}

func (c *AtomicClause) Position() Pos { return c.Pos }
func (*AtomicClause) clauseNode() {}

// ClauseGroup is a parenthesized sub-expression.
type ClauseGroup struct {
	Pos     Pos
	Clauses []ClauseWithNextOp
}

func (g *ClauseGroup) Position() Pos { return g.Pos }
func (*ClauseGroup) clauseNode() {}

// Operator is the comparison operator of an atomic clause.
type Operator int

const (
	OpEquals Operator = iota
	OpNotEquals
	OpContains
	OpNotContains
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual
	OpIn
	OpNotIn
	OpIs
	OpIsNot
)

var operatorNames = [...]string{
	OpEquals:         "=",
	OpNotEquals:      "!=",
	OpContains:       "~",
	OpNotContains:    "!~",
	OpLess:           "<",
	OpLessOrEqual:    "<=",
	OpGreater:        ">",
	OpGreaterOrEqual: ">=",
	OpIn:             "IN",
	OpNotIn:          "NOT IN",
	OpIs:             "IS",
	OpIsNot:          "IS NOT",
}

func (o Operator) String() string {
	if o < 0 || int(o) >= len(operatorNames) {
		return fmt.Sprintf("Operator(%d)", int(o))
	}
	return operatorNames[o]
}

// ParseOperator parses the textual form of an operator. Keywords are
// case-insensitive and inner whitespace is collapsed ("not  in" is NOT IN).
func ParseOperator(s string) (Operator, error) {
	norm := strings.ToUpper(strings.Join(strings.Fields(s), " "))
	for op, name := range operatorNames {
		if name == norm {
			return Operator(op), nil
		}
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

// IsList reports whether the operator expects a List on its right side.
func (o Operator) IsList() bool {
	return o == OpIn || o == OpNotIn
}

// IsUnary reports whether the operator tests emptiness (IS / IS NOT).
func (o Operator) IsUnary() bool {
	return o == OpIs || o == OpIsNot
}

// Value is a right-hand side value: *Literal, *FunctionCall or *List.
//
// This is a sealed interface - only types in this package implement it.
type Value interface {
	Position() Pos
	valueNode()
}

// AtomicValue is a Value that is not a list: *Literal or *FunctionCall.
type AtomicValue interface {
	Value
	atomicValueNode()
}

// Literal is a string or number as written in the query, unquoted.
type Literal struct {
	Pos  Pos
	Text string
}

func (l *Literal) Position() Pos { return l.Pos }
func (*Literal) valueNode() {}
func (*Literal) atomicValueNode() {}

// FunctionCall is a call like currentContent() or now("-1d").
type FunctionCall struct {
	Pos  Pos
	Name string
	Args []string
}

func (f *FunctionCall) Position() Pos { return f.Pos }
func (*FunctionCall) valueNode() {}
func (*FunctionCall) atomicValueNode() {}

// List is the parenthesized value list of IN and NOT IN.
type List struct {
	Pos    Pos
	Values []AtomicValue
}

func (l *List) Position() Pos { return l.Pos }
func (*List) valueNode() {}

// IsNilValue reports whether v is absent: a nil interface or a nil pointer of
// one of the value types.
func IsNilValue(v Value) bool {
	switch val := v.(type) {
	case nil:
		return true
	case *Literal:
		return val == nil
	case *FunctionCall:
		return val == nil
	case *List:
		return val == nil
	default:
		return false
	}
}

// OrderBy is one entry of an ORDER BY clause.
type OrderBy struct {
	Pos   Pos
	Field string
	Desc  bool
}

// Direction returns "asc" or "desc".
func (o OrderBy) Direction() string {
	if o.Desc {
		return "desc"
	}
	return "asc"
}
