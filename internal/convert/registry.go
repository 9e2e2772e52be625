package convert

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/cqlsolr/internal/cql"
)

// AtomRegistration describes one specialized atom converter.
type AtomRegistration struct {
	// Names are the field names the converter is registered under. They give
	// O(1) dispatch and win over any pattern declared by another converter.
	Names []string

	// Handles declares additional fields, matched in registration order when
	// no name matched directly.
	Handles HandledFields

	// Converter does the work.
	Converter AtomConverter
}

type atomEntry struct {
	names     []string
	handles   HandledFields
	converter AtomConverter
}

// Builder collects converter registrations. It is not safe for concurrent
// use; Build freezes it into a Registry that is.
type Builder struct {
	logger      *slog.Logger
	atoms       []*atomEntry
	byName      map[string]*atomEntry
	sorts       []SortConverter
	defaultAtom AtomConverter
	defaultSort SortConverter
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for registration and lookup diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithDefaultAtomConverter replaces the converter used when no specialized
// converter handles a field.
func WithDefaultAtomConverter(c AtomConverter) Option {
	return func(b *Builder) {
		if c != nil {
			b.defaultAtom = c
		}
	}
}

// WithDefaultSortConverter replaces the sort converter tried last.
func WithDefaultSortConverter(c SortConverter) Option {
	return func(b *Builder) {
		if c != nil {
			b.defaultSort = c
		}
	}
}

// NewBuilder creates an empty Builder. Without options, fields map to the
// Solr field of the same name and nothing is sortable.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		byName:      make(map[string]*atomEntry),
		defaultAtom: &FieldConverter{},
		defaultSort: SortTable{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RegisterAtom adds a specialized atom converter.
//
// Registrations that could never be selected are rejected: no converter, no
// name and no handled fields, or a malformed handled-fields declaration.
// A name already taken by an earlier registration is rejected as well.
// Rejections are logged and returned; the builder stays usable.
func (b *Builder) RegisterAtom(reg AtomRegistration) error {
	if err := b.checkAtom(reg); err != nil {
		b.logger.Warn("atom converter rejected",
			"names", reg.Names,
			"handles", reg.Handles.String(),
			"error", err)
		return err
	}

	entry := &atomEntry{
		handles:   reg.Handles,
		converter: reg.Converter,
	}
	for _, name := range reg.Names {
		key := NormalizeField(name)
		entry.names = append(entry.names, key)
		b.byName[key] = entry
	}
	b.atoms = append(b.atoms, entry)

	b.logger.Debug("atom converter registered",
		"names", entry.names,
		"handles", reg.Handles.String(),
		"converter", fmt.Sprintf("%T", reg.Converter))
	return nil
}

func (b *Builder) checkAtom(reg AtomRegistration) error {
	if reg.Converter == nil {
		return fmt.Errorf("atom converter is nil")
	}
	if err := reg.Handles.validate(); err != nil {
		return err
	}
	if len(reg.Names) == 0 && reg.Handles.IsZero() {
		return fmt.Errorf("atom converter has neither names nor handled fields")
	}
	for _, name := range reg.Names {
		key := NormalizeField(name)
		if key == "" {
			return fmt.Errorf("atom converter name is empty")
		}
		if _, taken := b.byName[key]; taken {
			return fmt.Errorf("field name %q is already registered", key)
		}
	}
	return nil
}

// RegisterSort adds a sort converter. Sort converters are tried in
// registration order, before the default one.
func (b *Builder) RegisterSort(c SortConverter) error {
	if c == nil {
		err := fmt.Errorf("sort converter is nil")
		b.logger.Warn("sort converter rejected", "error", err)
		return err
	}
	b.sorts = append(b.sorts, c)
	b.logger.Debug("sort converter registered", "converter", fmt.Sprintf("%T", c))
	return nil
}

// Build returns the frozen registry. The builder must not be used afterwards.
func (b *Builder) Build() *Registry {
	byName := make(map[string]*atomEntry, len(b.byName))
	for k, v := range b.byName {
		byName[k] = v
	}
	return &Registry{
		logger:      b.logger,
		atoms:       append([]*atomEntry(nil), b.atoms...),
		byName:      byName,
		sorts:       append([]SortConverter(nil), b.sorts...),
		defaultAtom: b.defaultAtom,
		defaultSort: b.defaultSort,
	}
}

// Registry maps CQL fields and sort keys to their converters.
//
// A Registry is immutable: it is safe for concurrent use by any number of
// compilers.
type Registry struct {
	logger      *slog.Logger
	atoms       []*atomEntry
	byName      map[string]*atomEntry
	sorts       []SortConverter
	defaultAtom AtomConverter
	defaultSort SortConverter
}

// Logger returns the registry's logger.
func (r *Registry) Logger() *slog.Logger {
	return r.logger
}

// DefaultAtomConverter returns the converter handling any field generically.
func (r *Registry) DefaultAtomConverter() AtomConverter {
	return r.defaultAtom
}

// SpecializedAtomConverter returns the converter responsible for field, or
// nil when only the default converter applies.
//
// Resolution:
//  1. A converter registered under the field name wins, unless it declares
//     handled fields that differ from that name.
//  2. Otherwise the first converter, in registration order, whose handled
//     fields equal or fully match the field.
//
// Lookup is case-insensitive.
func (r *Registry) SpecializedAtomConverter(field string) AtomConverter {
	key := NormalizeField(field)

	if candidate, ok := r.byName[key]; ok {
		h := candidate.handles
		if h.IsZero() || (h.kind == handlesExact && h.exact == key) {
			return candidate.converter
		}
	}

	for _, candidate := range r.atoms {
		if r.handles(candidate, key) {
			return candidate.converter
		}
	}
	return nil
}

// AtomConverter returns the converter responsible for field, falling back to
// the default converter.
func (r *Registry) AtomConverter(field string) AtomConverter {
	if c := r.SpecializedAtomConverter(field); c != nil {
		return c
	}
	return r.defaultAtom
}

func (r *Registry) handles(candidate *atomEntry, key string) bool {
	h := candidate.handles
	switch h.kind {
	case handlesNone:
		return false
	case handlesExact:
		return h.exact == key
	case handlesPattern:
		return h.pattern != nil && h.pattern.MatchString(key)
	default:
		r.logger.Error("converter declares an unsupported handled fields type, it will be ignored",
			"converter", fmt.Sprintf("%T", candidate.converter),
			"handles", h.String())
		return false
	}
}

// SortParameter returns the Solr sort fragment for one ORDER BY entry.
//
// Registered sort converters are tried in order; the first non-empty result
// wins. The default sort converter comes last. If nothing applies the field
// is not sortable.
func (r *Registry) SortParameter(stmt *cql.Statement, orderBy cql.OrderBy) (string, error) {
	field := orderBy.Field
	for _, c := range r.sorts {
		param, err := c.SortParameter(stmt, orderBy, field)
		if err != nil {
			return "", asConversionError(err, orderBy.Pos, field)
		}
		if param != "" {
			return param, nil
		}
	}

	param, err := r.defaultSort.SortParameter(stmt, orderBy, field)
	if err != nil {
		return "", asConversionError(err, orderBy.Pos, field)
	}
	if param == "" {
		return "", NewUnsortableError(orderBy.Pos, field)
	}
	return param, nil
}
