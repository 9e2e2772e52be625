package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cqlsolr/internal/config"
	"github.com/roach88/cqlsolr/internal/convert"
)

// Scenario defines one conversion test case.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is merged over the default configuration.
	Config *config.Config `yaml:"config,omitempty"`

	// Documents are stored in the index before converting.
	Documents []DocumentStep `yaml:"documents,omitempty"`

	// Current is the content id of the current document. Zero means the
	// query runs without a current document.
	Current int64 `yaml:"current,omitempty"`

	// Query is the query document, in the format cql.Decode reads.
	Query yaml.Node `yaml:"query"`

	// Expect is the expected outcome.
	Expect Expectation `yaml:"expect"`
}

// DocumentStep maps a content id to a document given in local form
// ("Space.Page").
type DocumentStep struct {
	ID  int64  `yaml:"id"`
	Ref string `yaml:"ref"`
}

// Expectation describes the outcome of a scenario. Either Error or Query is
// set; Sort defaults to the empty string.
type Expectation struct {
	Query *string `yaml:"query,omitempty"`
	Sort  string  `yaml:"sort,omitempty"`

	// Error is the expected conversion error code.
	Error convert.ErrorCode `yaml:"error,omitempty"`

	// ErrorContains must appear in the error message.
	ErrorContains string `yaml:"error_contains,omitempty"`

	// Warnings must each appear in one of the validation warnings.
	Warnings []string `yaml:"warnings,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every .yaml file of dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", filepath.Base(path), s.Name, prev)
		}
		seen[s.Name] = filepath.Base(path)
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Query.Kind == 0 {
		return fmt.Errorf("query is required")
	}

	ids := make(map[int64]bool, len(s.Documents))
	for i, doc := range s.Documents {
		if doc.Ref == "" {
			return fmt.Errorf("documents[%d]: ref is required", i)
		}
		if ids[doc.ID] {
			return fmt.Errorf("documents[%d]: duplicate id %d", i, doc.ID)
		}
		ids[doc.ID] = true
	}
	if s.Current != 0 && !ids[s.Current] {
		return fmt.Errorf("current document %d is not listed in documents", s.Current)
	}

	return validateExpectation(&s.Expect)
}

func validateExpectation(e *Expectation) error {
	switch e.Error {
	case "":
		if e.Query == nil {
			return fmt.Errorf("expect: query or error is required")
		}
		if e.ErrorContains != "" {
			return fmt.Errorf("expect: error_contains requires error")
		}
	case convert.ErrCodeInvalidValue, convert.ErrCodeNotFound, convert.ErrCodeUnsortable, convert.ErrCodeBug:
		if e.Query != nil || e.Sort != "" {
			return fmt.Errorf("expect: a failing conversion has no query or sort")
		}
	default:
		return fmt.Errorf("expect: unknown error code %q", e.Error)
	}
	return nil
}
