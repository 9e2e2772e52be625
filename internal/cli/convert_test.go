package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cqlsolr/internal/store"
	"github.com/roach88/cqlsolr/internal/testutil"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// seedDatabase creates a document database holding Eng.Backend.WebHome as
// content id 1001.
func seedDatabase(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "docs.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.PutDocument(context.Background(), 1001, testutil.Ref("WebHome", "Eng", "Backend")))
	require.NoError(t, st.Close())
	return path
}

func executeConvert(t *testing.T, format string, args ...string) (string, string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := NewConvertCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), errBuf.String(), err
}

func TestConvertCommand_Text(t *testing.T) {
	dir := t.TempDir()
	query := writeFile(t, dir, "query.yaml", `
where:
  - {field: title, op: "=", value: Roadmap, next: and}
  - {field: type, op: in, value: [page, blog]}
order_by:
  - {field: created, desc: true}
`)

	out, _, err := executeConvert(t, "text", query)
	require.NoError(t, err)
	assert.Equal(t, "q=(title:Roadmap) AND (type:(page OR blog))\nsort=creationdate desc\n", out)
}

func TestConvertCommand_JSONWithDatabase(t *testing.T) {
	dir := t.TempDir()
	db := seedDatabase(t, dir)
	query := writeFile(t, dir, "query.yaml", `
where:
  - {field: parent, op: "=", value: {fn: currentContent}}
`)

	out, _, err := executeConvert(t, "json", query, "--db", db, "--current-id", "1001")
	require.NoError(t, err)

	var resp struct {
		Status  string        `json:"status"`
		Data    ConvertOutput `json:"data"`
		TraceID string        `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, `space_facet:(1\/Eng.Backend. AND 2\/* AND -3\/*)`, resp.Data.Query)
	assert.Empty(t, resp.Data.Sort)
	assert.NotEmpty(t, resp.TraceID)
}

func TestConvertCommand_CurrentReference(t *testing.T) {
	dir := t.TempDir()
	query := writeFile(t, dir, "query.yaml", `
where:
  - {field: space, op: "=", value: {fn: currentSpace}}
`)

	out, _, err := executeConvert(t, "text", query, "--current", "Eng.Backend.WebHome")
	require.NoError(t, err)
	assert.Equal(t, "q=space_facet:0\\/Eng.\n", out)
}

func TestConvertCommand_WithConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "fields.yaml", `
fields:
  title: title_en
patterns:
  - {match: 'cf_(\w+)', field: 'property.Custom.$1'}
`)
	query := writeFile(t, dir, "query.yaml", `
where:
  - {field: title, op: "=", value: x, next: or}
  - {field: cf_owner, op: "=", value: bob}
`)

	out, _, err := executeConvert(t, "text", query, "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "q=(title_en:x) OR (property.Custom.owner:bob)\n", out)
}

func TestConvertCommand_WarningsAreReported(t *testing.T) {
	dir := t.TempDir()
	query := writeFile(t, dir, "query.yaml", `
where:
  - {field: title, op: "=", value: x, next: and}
`)

	out, errOut, err := executeConvert(t, "text", query)
	require.NoError(t, err)
	assert.Contains(t, out, "q=title:x\n")
	assert.Contains(t, out, "warning: ")
	assert.Contains(t, errOut, "suspicious query construct")
}

func TestConvertCommand_ConversionErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"unknown content id", `{where: [{field: id, op: "=", value: "99"}]}`, "NOT_FOUND"},
		{"non numeric id", `{where: [{field: id, op: "=", value: abc}]}`, "INVALID_VALUE"},
		{"no current document", `{where: [{field: id, op: "=", value: {fn: currentContent}}]}`, "NOT_FOUND"},
		{"unsortable", `{where: [], order_by: [label asc]}`, "UNSORTABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := writeFile(t, t.TempDir(), "query.yaml", tt.query)

			out, _, err := executeConvert(t, "json", query)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotNil(t, resp.Error.Details)
		})
	}
}

func TestConvertCommand_TextErrorShowsCode(t *testing.T) {
	query := writeFile(t, t.TempDir(), "query.yaml", `{where: [{field: id, op: "=", value: abc}]}`)

	out, _, err := executeConvert(t, "text", query)
	require.Error(t, err)
	assert.Contains(t, out, "Error [INVALID_VALUE]")
}

func TestConvertCommand_CommandErrors(t *testing.T) {
	dir := t.TempDir()
	valid := writeFile(t, dir, "query.yaml", `{where: [{field: title, op: "=", value: x}]}`)
	broken := writeFile(t, dir, "broken.yaml", `{where: [{field: title, op: "??", value: x}]}`)
	badConfig := writeFile(t, dir, "fields.toml", "")

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"missing query", []string{filepath.Join(dir, "missing.yaml")}, ErrCodeNotFound},
		{"malformed query", []string{broken}, ErrCodeQuery},
		{"unsupported config", []string{valid, "--config", badConfig}, ErrCodeConfig},
		{"missing database", []string{valid, "--db", filepath.Join(dir, "missing.db")}, ErrCodeStore},
		{"bad current reference", []string{valid, "--current", "NoSpace"}, ErrCodeQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := executeConvert(t, "json", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestConvertCommand_CurrentFlagsAreExclusive(t *testing.T) {
	query := writeFile(t, t.TempDir(), "query.yaml", `{where: []}`)

	_, _, err := executeConvert(t, "text", query, "--current-id", "1", "--current", "A.B")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}
