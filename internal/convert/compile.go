package convert

import (
	"fmt"
	"strings"

	"github.com/roach88/cqlsolr/internal/cql"
	"github.com/roach88/cqlsolr/internal/solr"
)

// Compiler translates CQL statements to Solr query and sort parameters.
//
// A Compiler holds no state besides its immutable registry: one instance can
// serve concurrent calls.
type Compiler struct {
	registry *Registry
}

// NewCompiler creates a Compiler dispatching to registry. A nil registry
// is replaced by NewBuilder().Build(), which only holds the default
// converters.
func NewCompiler(registry *Registry) *Compiler {
	if registry == nil {
		registry = NewBuilder().Build()
	}
	return &Compiler{registry: registry}
}

// Result holds both Solr parameters of a statement.
type Result struct {
	Query string `json:"query"`
	Sort  string `json:"sort"`
}

// Compile returns the query and sort parameters of stmt. Any error aborts the
// whole conversion; no partial result is returned.
func (c *Compiler) Compile(stmt *cql.Statement) (Result, error) {
	q, err := c.Query(stmt)
	if err != nil {
		return Result{}, err
	}
	s, err := c.Sort(stmt)
	if err != nil {
		return Result{}, err
	}
	return Result{Query: q, Sort: s}, nil
}

// Query returns the Solr boolean query of stmt.
//
// Clauses are combined left to right with no precedence between AND and OR:
//
//	(c1) AND (c2) OR -(c3)
//
// A single clause is emitted without parentheses. A statement without any
// clause yields the empty query.
func (c *Compiler) Query(stmt *cql.Statement) (string, error) {
	if stmt == nil {
		return "", NewBugError(cql.Pos{}, "", "cannot compile nil statement")
	}
	return c.compileList(stmt.Where)
}

// compileList folds a clause list. The operator of the last clause, if any,
// has nothing to bind to and is skipped.
func (c *Compiler) compileList(clauses []cql.ClauseWithNextOp) (string, error) {
	if len(clauses) == 1 {
		return c.compileClause(clauses[0].Clause)
	}

	var b strings.Builder
	for i, cwo := range clauses {
		s, err := c.compileClause(cwo.Clause)
		if err != nil {
			return "", err
		}
		b.WriteString(solr.Group(s))

		if cwo.Next == nil || i == len(clauses)-1 {
			continue
		}
		if cwo.Next.IsAnd {
			b.WriteString(solr.And)
		} else {
			b.WriteString(solr.Or)
		}
		if cwo.Next.IsNot {
			b.WriteString(solr.Not)
		}
	}

	return strings.TrimSpace(b.String()), nil
}

func (c *Compiler) compileClause(clause cql.Clause) (string, error) {
	var (
		s   string
		err error
		pos cql.Pos
	)

	switch cl := clause.(type) {
	case *cql.AtomicClause:
		if cl == nil {
			return "", NewBugError(pos, "", "nil atomic clause")
		}
		pos = cl.Pos
		s, err = c.compileAtom(cl)
	case *cql.ClauseGroup:
		if cl == nil {
			return "", NewBugError(pos, "", "nil clause group")
		}
		pos = cl.Pos
		s, err = c.compileList(cl.Clauses)
	case nil:
		return "", NewBugError(pos, "", "nil clause")
	default:
		return "", NewBugError(clause.Position(), "", "unsupported clause type %T", clause)
	}

	if err != nil {
		return "", err
	}
	if s == "" {
		return "", NewBugError(pos, "", "failed to convert this clause")
	}
	return s, nil
}

// compileAtom asks the specialized converter first and falls back to the
// default one when it is not applicable.
func (c *Compiler) compileAtom(atom *cql.AtomicClause) (string, error) {
	var result string

	if conv := c.registry.SpecializedAtomConverter(atom.Field); conv != nil {
		s, err := conv.ConvertAtom(atom)
		if err != nil {
			return "", asConversionError(err, atom.Pos, atom.Field)
		}
		c.registry.logger.Debug("specialized converter",
			"field", atom.Field,
			"converter", fmt.Sprintf("%T", conv),
			"result", s)
		result = s
	}

	if result == "" {
		s, err := c.registry.DefaultAtomConverter().ConvertAtom(atom)
		if err != nil {
			return "", asConversionError(err, atom.Pos, atom.Field)
		}
		result = s
	}

	if result == "" {
		return "", NewBugError(atom.Pos, atom.Field, "no converter produced a result for this clause")
	}
	return result, nil
}

// Sort returns the Solr sort parameter of stmt: one fragment per ORDER BY
// entry, in order, joined with ",". No ORDER BY yields "".
func (c *Compiler) Sort(stmt *cql.Statement) (string, error) {
	if stmt == nil {
		return "", NewBugError(cql.Pos{}, "", "cannot compile nil statement")
	}

	fragments := make([]string, 0, len(stmt.OrderBy))
	for _, ob := range stmt.OrderBy {
		param, err := c.registry.SortParameter(stmt, ob)
		if err != nil {
			return "", err
		}
		fragments = append(fragments, param)
	}
	return strings.TrimSpace(strings.Join(fragments, ",")), nil
}
