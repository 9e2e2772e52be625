// Package cql provides the abstract syntax tree of a parsed CQL (Confluence
// Query Language) statement.
//
// The tree is produced by an external parser and consumed once by the Solr
// converters in package convert. It is never mutated after construction.
//
// STRUCTURE:
//
//	Statement
//	  ├── Where   []ClauseWithNextOp   (flat, left to right)
//	  │     ├── AtomicClause   field op value
//	  │     └── ClauseGroup    ( ... ) recursively owning a clause list
//	  └── OrderBy []OrderBy
//
// FLAT BOOLEAN EVALUATION:
//
// CQL has no precedence between AND and OR. A clause list is evaluated from
// left to right, each NextOperator binding the clause on its left to the
// clause on its right:
//
//	a AND b OR c   ==   ((a AND b) OR c)
//
// This is why clause lists are slices of (clause, next operator) pairs and not
// binary trees.
//
// POSITIONS:
//
// Every node carries a Pos recording where the parser started reading it.
// Consumers never inspect it, they only forward it into error values.
//
// INTERCHANGE FORMAT:
//
// Decode reads the YAML (or JSON) document the external parser emits. See
// decode.go for the exact shape.
package cql
