// Package harness runs conversion scenarios: YAML files describing the
// documents known to the index, a query document and the expected Solr
// parameters or error.
//
// Each scenario runs against a fresh in-memory store and the default
// configuration, optionally extended by the scenario. Results are compared
// with the scenario's expectations and, in tests, with golden snapshots
// stored under testdata/golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
