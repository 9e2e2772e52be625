package fields

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/cqlsolr/internal/convert"
	"github.com/roach88/cqlsolr/internal/cql"
	"github.com/roach88/cqlsolr/internal/document"
	"github.com/roach88/cqlsolr/internal/solr"
)

// AncestorFacet returns the hierarchy facet value matching every document
// below ref's spaces: "N/S1.S2...SN+1." with N the depth of the last space.
// A reference without spaces has no facet.
func AncestorFacet(ref document.Reference) string {
	if len(ref.Spaces) == 0 {
		return ""
	}
	return strconv.Itoa(len(ref.Spaces)-1) + "/" + document.SpacePath(ref)
}

// ParentValues narrows an ancestor facet to direct children:
//
//	(s AND (n+1)\/* AND -(n+2)\/*)
//
// where s is the ancestor facet at depth n.
type ParentValues struct {
	Ancestor convert.ValueConverter
}

func (v *ParentValues) ConvertValue(atom *cql.AtomicClause, value cql.AtomicValue) (string, error) {
	s, err := v.Ancestor.ConvertValue(atom, value)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", convert.NewBugError(value.Position(), atom.Field,
			"didn't expect to have an empty ancestor Solr conversion")
	}

	depth, ok := facetDepth(s)
	if !ok {
		return "", convert.NewBugError(value.Position(), atom.Field,
			"expected the ancestor clause to be converted to something like N/*, got %q", s)
	}
	return ParentQuery(s, depth), nil
}

// ParentQuery builds the direct-children query from an escaped ancestor
// facet s at depth n.
func ParentQuery(s string, n int) string {
	return fmt.Sprintf("(%s AND %d%s* AND -%d%s*)", s, n+1, solr.PathSeparator, n+2, solr.PathSeparator)
}

// facetDepth parses the depth prefix of an escaped facet value.
func facetDepth(s string) (int, bool) {
	i := strings.Index(s, solr.PathSeparator)
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// CurrentSpace is the function denoting the top level space of the current
// document.
const CurrentSpace = "currentSpace"

// SpaceValues renders a space key as the top level hierarchy facet "0/K.".
type SpaceValues struct {
	Current document.CurrentFunc
}

func (v *SpaceValues) ConvertValue(atom *cql.AtomicClause, value cql.AtomicValue) (string, error) {
	if err := checkOperator(atom); err != nil {
		return "", err
	}

	if cql.IsNilValue(value) {
		return "", convert.NewBugError(atom.Pos, atom.Field, "nil %T value", value)
	}

	var key string
	switch val := value.(type) {
	case *cql.Literal:
		key = strings.TrimSpace(val.Text)
	case *cql.FunctionCall:
		if !strings.EqualFold(val.Name, CurrentSpace) {
			return "", convert.NewInvalidValueError(val.Pos, atom.Field,
				"function [%s] is not supported for this field", val.Name)
		}
		if len(val.Args) > 0 {
			return "", convert.NewInvalidValueError(val.Pos, atom.Field,
				"function [%s] does not take any argument", val.Name)
		}
		if v.Current == nil {
			return "", convert.NewBugError(val.Pos, atom.Field, "no current document provider")
		}
		ref, err := v.Current()
		if err != nil {
			return "", convert.NewNotFoundError(val.Pos, atom.Field, err, "the current document is not available")
		}
		if len(ref.Spaces) == 0 {
			return "", nil
		}
		key = ref.Spaces[0]
	default:
		return "", convert.NewBugError(atom.Pos, atom.Field, "unsupported value type %T", value)
	}

	if key == "" {
		return "", convert.NewInvalidValueError(value.Position(), atom.Field, "expected a space key")
	}
	return solr.Escape(AncestorFacet(document.Reference{Spaces: []string{key}})), nil
}
