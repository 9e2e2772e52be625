package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

// LoadError represents an error that occurred while loading a configuration.
type LoadError struct {
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	if e.Pos.IsValid() {
		fmt.Fprintf(&b, "%s:%d:%d: ", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	} else if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads the configuration at path and merges it over Default().
// An empty path returns Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read config file", Err: err}
	}

	var loaded *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		loaded, err = ParseYAML(path, data)
	case ".cue":
		loaded, err = ParseCUE(path, data)
	default:
		return nil, &LoadError{Path: path, Message: fmt.Sprintf("unsupported config format %q (want .yaml, .yml or .cue)", ext)}
	}
	if err != nil {
		return nil, err
	}

	cfg.Merge(loaded)
	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{Path: path, Message: "invalid configuration", Err: err}
	}
	return cfg, nil
}

// ParseYAML decodes a YAML configuration. Unknown keys are rejected.
func ParseYAML(path string, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, &LoadError{Path: path, Message: "failed to parse YAML config", Err: err}
	}
	return &cfg, nil
}

// ParseCUE evaluates a CUE configuration and decodes it. The top level
// fields are those of the YAML form.
func ParseCUE(path string, data []byte) (*Config, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, cueLoadError(path, "failed to compile CUE config", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(path, "CUE config is not concrete", err)
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return nil, cueLoadError(path, "failed to decode CUE config", err)
	}
	return &cfg, nil
}

func cueLoadError(path, msg string, err error) *LoadError {
	le := &LoadError{Path: path, Message: msg, Err: err}
	if positions := cueerrors.Positions(err); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
