// Package document models the wiki documents CQL identifiers resolve to and
// the collaborators the field converters rely on to find them.
package document

import (
	"fmt"
	"strings"
)

// Reference identifies a wiki document: the nested spaces holding it and its
// name inside the last space.
type Reference struct {
	Wiki   string   `json:"wiki,omitempty" yaml:"wiki,omitempty"`
	Spaces []string `json:"spaces" yaml:"spaces"`
	Name   string   `json:"name" yaml:"name"`
}

// IsZero reports whether r designates no document.
func (r Reference) IsZero() bool {
	return len(r.Spaces) == 0 && r.Name == ""
}

// Validate checks that r can be serialized and parsed back.
func (r Reference) Validate() error {
	if len(r.Spaces) == 0 {
		return fmt.Errorf("document reference has no space")
	}
	for i, s := range r.Spaces {
		if s == "" {
			return fmt.Errorf("document reference space %d is empty", i)
		}
	}
	if r.Name == "" {
		return fmt.Errorf("document reference has no name")
	}
	return nil
}

// String returns the local form of r.
func (r Reference) String() string {
	return Local(r)
}

// Local serializes r without its wiki: "Space1.Space2.Name". Dots and
// backslashes inside a part are escaped with a backslash.
func Local(r Reference) string {
	parts := make([]string, 0, len(r.Spaces)+1)
	for _, s := range r.Spaces {
		parts = append(parts, escapePart(s))
	}
	parts = append(parts, escapePart(r.Name))
	return strings.Join(parts, ".")
}

// SpacePath returns the escaped spaces of r, each followed by a dot:
// "Space1.Space2.".
func SpacePath(r Reference) string {
	var b strings.Builder
	for _, s := range r.Spaces {
		b.WriteString(escapePart(s))
		b.WriteByte('.')
	}
	return b.String()
}

// ParseLocal parses the output of Local. The last part is the document name,
// the ones before it are its spaces.
func ParseLocal(s string) (Reference, error) {
	var (
		parts   []string
		cur     strings.Builder
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '.':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		return Reference{}, fmt.Errorf("invalid document reference %q: dangling escape", s)
	}
	parts = append(parts, cur.String())

	if len(parts) < 2 {
		return Reference{}, fmt.Errorf("invalid document reference %q: expected Space.Name", s)
	}
	ref := Reference{
		Spaces: parts[:len(parts)-1],
		Name:   parts[len(parts)-1],
	}
	if err := ref.Validate(); err != nil {
		return Reference{}, fmt.Errorf("invalid document reference %q: %w", s, err)
	}
	return ref, nil
}

func escapePart(s string) string {
	if !strings.ContainsAny(s, `.\`) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == '.' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
