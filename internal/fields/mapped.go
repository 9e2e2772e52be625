package fields

import (
	"fmt"
	"regexp"

	"github.com/roach88/cqlsolr/internal/convert"
	"github.com/roach88/cqlsolr/internal/cql"
	"github.com/roach88/cqlsolr/internal/solr"
)

// MappedField renders the fields matching Pattern on a Solr field computed
// from Template, which may reference the match ("$0") and its groups ("$1").
// Values are handled by the default emission rules.
type MappedField struct {
	Pattern  *regexp.Regexp
	Template string
}

// NewMappedField compiles a pattern rule. The pattern must match the whole
// normalized field name.
func NewMappedField(pattern, template string) (*MappedField, convert.HandledFields, error) {
	handles, err := convert.CompilePattern(pattern)
	if err != nil {
		return nil, convert.HandledFields{}, err
	}
	if template == "" {
		return nil, convert.HandledFields{}, fmt.Errorf("pattern %q has an empty solr field template", pattern)
	}
	return &MappedField{Pattern: handles.Regexp(), Template: template}, handles, nil
}

func (m *MappedField) ConvertAtom(atom *cql.AtomicClause) (string, error) {
	key := convert.NormalizeField(atom.Field)
	if !m.Pattern.MatchString(key) {
		return "", nil
	}
	target := m.Pattern.ReplaceAllString(key, m.Template)
	if target == "" {
		return "", convert.NewBugError(atom.Pos, atom.Field,
			"pattern %s mapped the field to an empty solr field", m.Pattern)
	}

	fc := &convert.FieldConverter{SolrFields: []string{solr.Escape(target)}}
	return fc.ConvertAtom(atom)
}
