package cql

import (
	"fmt"
	"strings"
)

// ValidationResult contains the structural analysis of a statement.
//
// A statement with warnings can still be converted; the warnings point at
// constructs that the converters silently ignore or reject later with a
// less precise message.
type ValidationResult struct {
	// IsClean is true when no warning was raised.
	IsClean bool

	// Warnings lists the suspicious constructs, prefixed by their position.
	Warnings []string
}

// Validate checks a statement for structural problems the parser may have
// let through.
//
// Checked rules:
//  1. Clause lists are not empty
//  2. The last clause of a list carries no next operator
//  3. IN / NOT IN have a list on their right side, other operators do not
//  4. IS / IS NOT compare against nothing, EMPTY or NULL
//  5. Every clause and order-by entry names a field
//
// Validate is a pure function with no side effects.
func Validate(stmt *Statement) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	if stmt == nil {
		v.addWarning(Pos{}, "nil statement")
	} else {
		if len(stmt.Where) == 0 {
			v.addWarning(stmt.Pos, "statement has no clause, it will match every document")
		}
		v.validateList(stmt.Where)
		for _, ob := range stmt.OrderBy {
			if strings.TrimSpace(ob.Field) == "" {
				v.addWarning(ob.Pos, "order by entry without a field")
			}
		}
	}

	return ValidationResult{
		IsClean:  len(v.warnings) == 0,
		Warnings: v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) addWarning(pos Pos, format string, args ...any) {
	v.warnings = append(v.warnings, pos.String()+": "+fmt.Sprintf(format, args...))
}

func (v *validator) validateList(clauses []ClauseWithNextOp) {
	for i, cwo := range clauses {
		v.validateClause(cwo.Clause)
		if i == len(clauses)-1 && cwo.Next != nil {
			v.addWarning(cwo.Next.Pos, "trailing %s operator has no clause to bind to", cwo.Next)
		}
	}
}

func (v *validator) validateClause(c Clause) {
	switch clause := c.(type) {
	case *AtomicClause:
		v.validateAtom(clause)
	case *ClauseGroup:
		if len(clause.Clauses) == 0 {
			v.addWarning(clause.Pos, "empty parenthesized group")
		}
		v.validateList(clause.Clauses)
	case nil:
		v.addWarning(Pos{}, "nil clause")
	default:
		v.addWarning(c.Position(), "unknown clause type %T", c)
	}
}

func (v *validator) validateAtom(atom *AtomicClause) {
	if strings.TrimSpace(atom.Field) == "" {
		v.addWarning(atom.Pos, "clause without a field")
	}

	_, isList := atom.Right.(*List)
	switch {
	case atom.Operator.IsList() && !isList:
		v.addWarning(atom.Pos, "operator %s expects a value list", atom.Operator)
	case !atom.Operator.IsList() && isList:
		v.addWarning(atom.Pos, "operator %s does not accept a value list", atom.Operator)
	case atom.Operator.IsUnary():
		if lit, ok := atom.Right.(*Literal); ok && !IsEmptyKeyword(lit.Text) {
			v.addWarning(atom.Pos, "operator %s only compares against EMPTY, got %q", atom.Operator, lit.Text)
		}
	case atom.Right == nil:
		v.addWarning(atom.Pos, "operator %s requires a value", atom.Operator)
	}
}

// IsEmptyKeyword reports whether s is one of the keywords IS / IS NOT accept.
func IsEmptyKeyword(s string) bool {
	return strings.EqualFold(s, "empty") || strings.EqualFold(s, "null")
}
