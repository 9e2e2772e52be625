package harness

import (
	"fmt"
	"strings"
)

// EvaluateExpectation compares a result with an expectation and returns one
// message per mismatch.
func EvaluateExpectation(r *Result, e *Expectation) []string {
	var errs []string

	if e.Error != "" {
		if r.ErrorCode != string(e.Error) {
			errs = append(errs, mismatch("error code", string(e.Error), r.ErrorCode))
		}
		if e.ErrorContains != "" && !strings.Contains(r.Error, e.ErrorContains) {
			errs = append(errs, mismatch("error message containing", e.ErrorContains, r.Error))
		}
	} else {
		if r.ErrorCode != "" {
			errs = append(errs, mismatch("no error", "", r.Error))
		} else {
			if e.Query != nil && r.Query != *e.Query {
				errs = append(errs, mismatch("query", *e.Query, r.Query))
			}
			if r.Sort != e.Sort {
				errs = append(errs, mismatch("sort", e.Sort, r.Sort))
			}
		}
	}

	for _, want := range e.Warnings {
		if !containsWarning(r.Warnings, want) {
			errs = append(errs, mismatch("warning containing", want, strings.Join(r.Warnings, "; ")))
		}
	}
	return errs
}

func containsWarning(warnings []string, want string) bool {
	for _, w := range warnings {
		if strings.Contains(w, want) {
			return true
		}
	}
	return false
}

func mismatch(what, expected, actual string) string {
	return fmt.Sprintf("%s: expected %q, got %q", what, expected, actual)
}
