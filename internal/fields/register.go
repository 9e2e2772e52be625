// Package fields holds the converters of the CQL fields that need more than
// the generic "field op value" emission: document identifiers, the space
// hierarchy and configured field patterns.
package fields

import (
	"fmt"

	"github.com/roach88/cqlsolr/internal/convert"
	"github.com/roach88/cqlsolr/internal/document"
)

// Solr fields targeted by the built-in converters.
const (
	FullNameField   = "fullname"
	SpaceFacetField = "space_facet"
)

// Deps are the collaborators of the document-aware converters.
type Deps struct {
	Resolver   document.Resolver
	Current    document.CurrentFunc
	Serializer document.Serializer
}

// Rule maps the fields fully matching Pattern to the Solr field Template.
type Rule struct {
	Pattern  string
	Template string
}

// NewContentConverter handles "id" and "content": the document's full name.
func NewContentConverter(deps Deps) *convert.FieldConverter {
	serialize := deps.Serializer
	if serialize == nil {
		serialize = document.Local
	}
	return &convert.FieldConverter{
		SolrFields: []string{FullNameField},
		Values: &IDValues{
			Resolver: deps.Resolver,
			Current:  deps.Current,
			Project:  serialize,
		},
	}
}

func ancestorValues(deps Deps) *IDValues {
	return &IDValues{Resolver: deps.Resolver, Current: deps.Current, Project: AncestorFacet}
}

// NewAncestorConverter handles "ancestor": every document below the spaces
// of the designated one.
func NewAncestorConverter(deps Deps) *convert.FieldConverter {
	return &convert.FieldConverter{
		SolrFields: []string{SpaceFacetField},
		Values:     ancestorValues(deps),
	}
}

// NewParentConverter handles "parent": the direct children of the designated
// document.
func NewParentConverter(deps Deps) *convert.FieldConverter {
	return &convert.FieldConverter{
		SolrFields: []string{SpaceFacetField},
		Values:     &ParentValues{Ancestor: ancestorValues(deps)},
	}
}

// NewSpaceConverter handles "space": documents of a top level space.
func NewSpaceConverter(deps Deps) *convert.FieldConverter {
	return &convert.FieldConverter{
		SolrFields: []string{SpaceFacetField},
		Values:     &SpaceValues{Current: deps.Current},
	}
}

// Register adds the built-in converters, then one converter per rule in
// order. It stops at the first rejected registration.
func Register(b *convert.Builder, deps Deps, rules ...Rule) error {
	builtins := []convert.AtomRegistration{
		{Names: []string{"id", "content"}, Converter: NewContentConverter(deps)},
		{Names: []string{"ancestor"}, Converter: NewAncestorConverter(deps)},
		{Names: []string{"parent"}, Converter: NewParentConverter(deps)},
		{Names: []string{"space"}, Converter: NewSpaceConverter(deps)},
	}
	for _, reg := range builtins {
		if err := b.RegisterAtom(reg); err != nil {
			return fmt.Errorf("failed to register %v: %w", reg.Names, err)
		}
	}

	for _, rule := range rules {
		conv, handles, err := NewMappedField(rule.Pattern, rule.Template)
		if err != nil {
			return err
		}
		if err := b.RegisterAtom(convert.AtomRegistration{Handles: handles, Converter: conv}); err != nil {
			return fmt.Errorf("failed to register pattern %q: %w", rule.Pattern, err)
		}
	}
	return nil
}
