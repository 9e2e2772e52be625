// Package convert translates CQL statements to Solr query parameters.
//
// ARCHITECTURE:
//
//	cql.Statement ──► Compiler ──► Registry ──► AtomConverter  ──► "field:value"
//	                      │                 └─► SortConverter  ──► "field asc"
//	                      └──► flat fold "(c1) AND (c2) OR -(c3)"
//
// The Registry is built once with a Builder and never changes afterwards, so
// one Registry and one Compiler serve any number of concurrent conversions.
//
// DISPATCH:
//
// Atom converters are registered under field names (O(1) lookup) and may
// declare additional handled fields, either one exact name or a pattern.
// A converter registered under the field name always wins; otherwise the
// first converter whose declaration matches, in registration order. When
// nothing matches, or the chosen converter is not applicable (empty result),
// the default FieldConverter renders the clause.
//
// Sort converters are tried in registration order, then the default one.
// The first non-empty fragment wins.
//
// ERRORS:
//
// Every failure is a *ConversionError. Codes INVALID_VALUE, NOT_FOUND and
// UNSORTABLE point at the query; BUG points at a converter that broke its
// contract. Converters returning untyped errors are reported as BUG.
package convert
