// Package config loads the converter configuration: how CQL fields map to
// Solr fields, which fields are sortable and which field patterns get a
// computed Solr field.
//
// Configuration files are YAML (.yaml, .yml) or CUE (.cue). Values from a
// file are merged over Default().
package config

import (
	"fmt"
	"log/slog"

	"github.com/roach88/cqlsolr/internal/convert"
	"github.com/roach88/cqlsolr/internal/fields"
)

// Config describes the converters of a deployment.
type Config struct {
	// Fields maps CQL fields to the Solr field the default converter targets.
	Fields map[string]string `yaml:"fields" json:"fields"`

	// Sort maps CQL fields to Solr sort fields. Unlisted fields are unsortable.
	Sort map[string]string `yaml:"sort" json:"sort"`

	// Patterns are registered in order after the built-in converters.
	Patterns []PatternRule `yaml:"patterns" json:"patterns"`
}

// PatternRule maps every CQL field fully matching Match to the Solr field
// Field, which may reference the match ("$0") and its groups ("$1").
type PatternRule struct {
	Match string `yaml:"match" json:"match"`
	Field string `yaml:"field" json:"field"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Fields: map[string]string{
			"title":        "title",
			"text":         "doccontent",
			"type":         "type",
			"creator":      "creator",
			"contributor":  "author",
			"created":      "creationdate",
			"lastmodified": "date",
			"label":        "property.XWiki.TagClass.tags",
		},
		Sort: map[string]string{
			"title":        "title_sort",
			"created":      "creationdate",
			"lastmodified": "date",
			"creator":      "creator_display",
			"type":         "type",
		},
	}
}

// Merge overlays other on c: map entries are replaced key by key and pattern
// rules are appended.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if c.Fields == nil {
		c.Fields = make(map[string]string, len(other.Fields))
	}
	for k, v := range other.Fields {
		c.Fields[k] = v
	}
	if c.Sort == nil {
		c.Sort = make(map[string]string, len(other.Sort))
	}
	for k, v := range other.Sort {
		c.Sort[k] = v
	}
	c.Patterns = append(c.Patterns, other.Patterns...)
}

// Validate checks the configuration without building anything.
func (c *Config) Validate() error {
	for k, v := range c.Fields {
		if convert.NormalizeField(k) == "" {
			return fmt.Errorf("fields: empty CQL field name")
		}
		if v == "" {
			return fmt.Errorf("fields: CQL field %q maps to an empty Solr field", k)
		}
	}
	for k := range c.Sort {
		if convert.NormalizeField(k) == "" {
			return fmt.Errorf("sort: empty CQL field name")
		}
	}
	for i, p := range c.Patterns {
		if p.Match == "" {
			return fmt.Errorf("patterns[%d]: match is required", i)
		}
		if p.Field == "" {
			return fmt.Errorf("patterns[%d]: field is required", i)
		}
		if _, err := convert.CompilePattern(p.Match); err != nil {
			return fmt.Errorf("patterns[%d]: %w", i, err)
		}
	}
	return nil
}

// NewRegistry builds the registry of the configuration: built-in field
// converters wired to deps, then the pattern rules, with the field and sort
// tables as defaults.
func (c *Config) NewRegistry(logger *slog.Logger, deps fields.Deps) (*convert.Registry, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	b := convert.NewBuilder(
		convert.WithLogger(logger),
		convert.WithDefaultAtomConverter(convert.NewFieldConverter(c.Fields)),
		convert.WithDefaultSortConverter(convert.NewSortTable(c.Sort)),
	)

	rules := make([]fields.Rule, 0, len(c.Patterns))
	for _, p := range c.Patterns {
		rules = append(rules, fields.Rule{Pattern: p.Match, Template: p.Field})
	}
	if err := fields.Register(b, deps, rules...); err != nil {
		return nil, err
	}
	return b.Build(), nil
}
