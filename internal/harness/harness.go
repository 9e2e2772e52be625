package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/cqlsolr/internal/config"
	"github.com/roach88/cqlsolr/internal/convert"
	"github.com/roach88/cqlsolr/internal/cql"
	"github.com/roach88/cqlsolr/internal/document"
	"github.com/roach88/cqlsolr/internal/fields"
	"github.com/roach88/cqlsolr/internal/store"
)

// errNoCurrentDocument is returned by the current document provider of
// scenarios that do not set one.
var errNoCurrentDocument = errors.New("scenario has no current document")

// Harness runs scenarios. The zero value discards logs.
type Harness struct {
	logger *slog.Logger
}

func (h *Harness) log() *slog.Logger {
	if h.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return h.logger
}

// New creates a harness logging to logger. A nil logger discards logs.
func New(logger *slog.Logger) *Harness {
	return &Harness{logger: logger}
}

// Run executes a scenario with a harness discarding logs.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(context.Background(), scenario)
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database and store the scenario documents
// 2. Build the registry from the default and scenario configuration
// 3. Decode and validate the query document
// 4. Convert it and compare the outcome with the expectations
//
// The returned error reports a scenario that cannot run at all; conversion
// failures are part of the result.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	logger := h.log()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	for i, step := range scenario.Documents {
		ref, err := document.ParseLocal(step.Ref)
		if err != nil {
			return nil, fmt.Errorf("documents[%d]: %w", i, err)
		}
		if err := st.PutDocument(ctx, step.ID, ref); err != nil {
			return nil, fmt.Errorf("documents[%d]: %w", i, err)
		}
	}

	cfg := config.Default()
	cfg.Merge(scenario.Config)

	deps := fields.Deps{Resolver: st.Resolver(ctx)}
	if scenario.Current != 0 {
		deps.Current = st.Current(ctx, scenario.Current)
	} else {
		deps.Current = func() (document.Reference, error) {
			return document.Reference{}, errNoCurrentDocument
		}
	}

	registry, err := cfg.NewRegistry(logger, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to build converters: %w", err)
	}

	stmt, err := cql.DecodeNode(&scenario.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to decode query: %w", err)
	}

	result := NewResult()
	result.Warnings = cql.Validate(stmt).Warnings

	res, err := convert.NewCompiler(registry).Compile(stmt)
	if err != nil {
		result.ErrorCode = string(convert.CodeOf(err))
		result.Error = err.Error()
		logger.Debug("scenario conversion failed", "scenario", scenario.Name, "error", err)
	} else {
		result.Query = res.Query
		result.Sort = res.Sort
	}

	for _, msg := range EvaluateExpectation(result, &scenario.Expect) {
		result.AddError(msg)
	}
	return result, nil
}
