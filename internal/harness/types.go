package harness

import "strings"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates that every expectation matched.
	Pass bool `json:"pass"`

	Query string `json:"query"`
	Sort  string `json:"sort"`

	// ErrorCode and Error describe a failed conversion.
	ErrorCode string `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`

	// Warnings are the validation warnings of the query document.
	Warnings []string `json:"warnings,omitempty"`

	// Errors contains expectation mismatches.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds an expectation mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Snapshot renders the parts of r a golden file pins down: the Solr
// parameters and the error code. Messages are left to expectations so that
// wording changes do not churn every golden file.
func (r *Result) Snapshot(name string) []byte {
	var b strings.Builder
	line := func(key, value string) {
		b.WriteString(strings.TrimRight(key+": "+value, " "))
		b.WriteByte('\n')
	}
	line("scenario", name)
	line("query", r.Query)
	line("sort", r.Sort)
	if r.ErrorCode != "" {
		line("error", r.ErrorCode)
	}
	return []byte(b.String())
}
