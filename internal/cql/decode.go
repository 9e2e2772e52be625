package cql

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodeError reports a malformed query document.
type DecodeError struct {
	Pos     Pos
	Message string
}

func (e *DecodeError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}

func decodeErr(n *yaml.Node, format string, args ...any) error {
	return &DecodeError{Pos: nodePos(n), Message: fmt.Sprintf(format, args...)}
}

func nodePos(n *yaml.Node) Pos {
	if n == nil {
		return Pos{}
	}
	return Pos{Line: n.Line, Column: n.Column}
}

// DecodeFile reads a query document from a file. See Decode.
func DecodeFile(path string) (*Statement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads the query document emitted by the CQL parser.
//
// The document is YAML (JSON is accepted as well):
//
//	where:
//	  - {field: title, op: "=", value: foo, next: and}
//	  - group:
//	      - {field: space, op: "=", value: DOC, next: "or not"}
//	      - {field: id, op: "=", value: {fn: currentContent}}
//	  - {field: type, op: in, value: [page, blogpost]}
//	order_by:
//	  - {field: created, desc: true}
//	  - title asc
//
// Node positions are taken from the document itself.
func Decode(r io.Reader) (*Statement, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DecodeError{Message: "empty query document"}
		}
		return nil, fmt.Errorf("failed to parse query document: %w", err)
	}
	return DecodeNode(&root)
}

// DecodeNode decodes a query document already parsed into a YAML node, for
// documents embedded in larger files.
func DecodeNode(n *yaml.Node) (*Statement, error) {
	if n == nil || n.Kind == 0 {
		return nil, &DecodeError{Message: "empty query document"}
	}
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil, decodeErr(n, "query document must be a mapping")
	}

	stmt := &Statement{Pos: nodePos(n)}
	err := forEachKey(n, func(key string, k, val *yaml.Node) error {
		switch key {
		case "where":
			clauses, err := decodeClauseList(val)
			if err != nil {
				return err
			}
			stmt.Where = clauses
		case "order_by":
			orderBy, err := decodeOrderBy(val)
			if err != nil {
				return err
			}
			stmt.OrderBy = orderBy
		default:
			return decodeErr(k, "unknown key %q", key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

// forEachKey iterates a mapping node, rejecting duplicate keys.
func forEachKey(n *yaml.Node, fn func(key string, k, v *yaml.Node) error) error {
	seen := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		key := strings.ToLower(k.Value)
		if seen[key] {
			return decodeErr(k, "duplicate key %q", key)
		}
		seen[key] = true
		if err := fn(key, k, v); err != nil {
			return err
		}
	}
	return nil
}

func decodeClauseList(n *yaml.Node) ([]ClauseWithNextOp, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, decodeErr(n, "expected a list of clauses")
	}
	clauses := make([]ClauseWithNextOp, 0, len(n.Content))
	for _, item := range n.Content {
		cwo, err := decodeClause(item)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, cwo)
	}
	return clauses, nil
}

func decodeClause(n *yaml.Node) (ClauseWithNextOp, error) {
	var cwo ClauseWithNextOp
	if n.Kind != yaml.MappingNode {
		return cwo, decodeErr(n, "expected a clause mapping")
	}

	var (
		field, op, value, group *yaml.Node
	)
	err := forEachKey(n, func(key string, k, v *yaml.Node) error {
		switch key {
		case "field":
			field = v
		case "op":
			op = v
		case "value":
			value = v
		case "group":
			group = v
		case "next":
			next, err := decodeNextOperator(v)
			if err != nil {
				return err
			}
			cwo.Next = next
		default:
			return decodeErr(k, "unknown clause key %q", key)
		}
		return nil
	})
	if err != nil {
		return cwo, err
	}

	if group != nil {
		if field != nil || op != nil || value != nil {
			return cwo, decodeErr(n, "a group cannot also have field, op or value")
		}
		inner, err := decodeClauseList(group)
		if err != nil {
			return cwo, err
		}
		cwo.Clause = &ClauseGroup{Pos: nodePos(n), Clauses: inner}
		return cwo, nil
	}

	if field == nil || field.Kind != yaml.ScalarNode || field.Value == "" {
		return cwo, decodeErr(n, "clause requires a field")
	}
	if op == nil || op.Kind != yaml.ScalarNode {
		return cwo, decodeErr(n, "clause requires an op")
	}
	operator, err := ParseOperator(op.Value)
	if err != nil {
		return cwo, decodeErr(op, "%v", err)
	}

	atom := &AtomicClause{Pos: nodePos(n), Field: field.Value, Operator: operator}
	if value != nil && !isNull(value) {
		right, err := decodeValue(value)
		if err != nil {
			return cwo, err
		}
		atom.Right = right
	}
	cwo.Clause = atom
	return cwo, nil
}

func decodeNextOperator(n *yaml.Node) (*NextOperator, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.ScalarNode {
		return nil, decodeErr(n, "next must be one of: and, or, and not, or not")
	}
	op := &NextOperator{Pos: nodePos(n)}
	switch strings.ToLower(strings.Join(strings.Fields(n.Value), " ")) {
	case "and":
		op.IsAnd = true
	case "or":
	case "and not":
		op.IsAnd, op.IsNot = true, true
	case "or not":
		op.IsNot = true
	default:
		return nil, decodeErr(n, "invalid next operator %q", n.Value)
	}
	return op, nil
}

func decodeValue(n *yaml.Node) (Value, error) {
	if n.Kind == yaml.SequenceNode {
		list := &List{Pos: nodePos(n), Values: make([]AtomicValue, 0, len(n.Content))}
		for _, item := range n.Content {
			if item.Kind == yaml.SequenceNode {
				return nil, decodeErr(item, "value lists cannot be nested")
			}
			v, err := decodeAtomicValue(item)
			if err != nil {
				return nil, err
			}
			list.Values = append(list.Values, v)
		}
		return list, nil
	}
	return decodeAtomicValue(n)
}

func decodeAtomicValue(n *yaml.Node) (AtomicValue, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return &Literal{Pos: nodePos(n), Text: n.Value}, nil
	case yaml.MappingNode:
		fn := &FunctionCall{Pos: nodePos(n)}
		err := forEachKey(n, func(key string, k, v *yaml.Node) error {
			switch key {
			case "fn":
				if v.Kind != yaml.ScalarNode {
					return decodeErr(v, "function name must be a string")
				}
				fn.Name = v.Value
			case "args":
				if isNull(v) {
					return nil
				}
				if v.Kind != yaml.SequenceNode {
					return decodeErr(v, "function args must be a list")
				}
				for _, arg := range v.Content {
					if arg.Kind != yaml.ScalarNode {
						return decodeErr(arg, "function arguments must be scalars")
					}
					fn.Args = append(fn.Args, arg.Value)
				}
			default:
				return decodeErr(k, "unknown function key %q", key)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if fn.Name == "" {
			return nil, decodeErr(n, "function call requires fn")
		}
		return fn, nil
	default:
		return nil, decodeErr(n, "unsupported value")
	}
}

func decodeOrderBy(n *yaml.Node) ([]OrderBy, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, decodeErr(n, "order_by must be a list")
	}
	entries := make([]OrderBy, 0, len(n.Content))
	for _, item := range n.Content {
		ob := OrderBy{Pos: nodePos(item)}
		switch item.Kind {
		case yaml.ScalarNode:
			parts := strings.Fields(item.Value)
			if len(parts) == 0 || len(parts) > 2 {
				return nil, decodeErr(item, "expected \"field [asc|desc]\", got %q", item.Value)
			}
			ob.Field = parts[0]
			if len(parts) == 2 {
				desc, err := parseDirection(parts[1])
				if err != nil {
					return nil, decodeErr(item, "%v", err)
				}
				ob.Desc = desc
			}
		case yaml.MappingNode:
			err := forEachKey(item, func(key string, k, v *yaml.Node) error {
				switch key {
				case "field":
					ob.Field = v.Value
				case "desc":
					desc, err := strconv.ParseBool(v.Value)
					if err != nil {
						return decodeErr(v, "desc must be a boolean")
					}
					ob.Desc = desc
				case "direction":
					desc, err := parseDirection(v.Value)
					if err != nil {
						return decodeErr(v, "%v", err)
					}
					ob.Desc = desc
				default:
					return decodeErr(k, "unknown order_by key %q", key)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		default:
			return nil, decodeErr(item, "unsupported order_by entry")
		}
		if ob.Field == "" {
			return nil, decodeErr(item, "order_by entry requires a field")
		}
		entries = append(entries, ob)
	}
	return entries, nil
}

func parseDirection(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "asc":
		return false, nil
	case "desc":
		return true, nil
	}
	return false, fmt.Errorf("invalid sort direction %q", s)
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}
