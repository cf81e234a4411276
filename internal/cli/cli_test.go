package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the command tree with args and captures stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInvoke_Multiply(t *testing.T) {
	out, err := execute(t, "invoke", "--op", "multiply", "7", "6")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "invoke_multiply", []byte(out))
}

func TestInvoke_Add(t *testing.T) {
	out, err := execute(t, "invoke", "--op", "add", "123.45", "678.90")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "invoke_add", []byte(out))
}

func TestInvoke_DividePrecision(t *testing.T) {
	out, err := execute(t, "invoke", "--op", "divide", "--precision", "2", "22", "7")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "invoke_divide_precision", []byte(out))
}

// TestInvoke_DivideByZero verifies a domain failure prints as a result and
// exits cleanly.
func TestInvoke_DivideByZero(t *testing.T) {
	out, err := execute(t, "invoke", "--op", "divide", "22", "0")
	require.NoError(t, err, "domain failures are results, not command errors")

	g := goldie.New(t)
	g.Assert(t, "invoke_divide_by_zero", []byte(out))
}

func TestInvoke_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "invoke", "--op", "multiply", "7", "6")
	require.NoError(t, err)

	var res struct {
		Operation   string   `json:"operation"`
		Value       *float64 `json:"value"`
		Error       string   `json:"error"`
		CompletedAt string   `json:"completed_at"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "multiply", res.Operation)
	require.NotNil(t, res.Value)
	assert.Equal(t, 42.0, *res.Value)
	assert.Empty(t, res.Error)
	assert.NotEmpty(t, res.CompletedAt)
}

func TestInvoke_InvalidOperand(t *testing.T) {
	_, err := execute(t, "invoke", "--op", "add", "seven")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid operand")
}

func TestInvoke_SQLiteBackend(t *testing.T) {
	store := filepath.Join(t.TempDir(), "store.db")
	out, err := execute(t, "invoke", "--op", "divide", "--precision", "2",
		"--backend", "sqlite", "--store", store, "22", "7")
	require.NoError(t, err)
	assert.Equal(t, "divide = 3.14\n", out)
}

func TestInvoke_SQLiteRequiresStore(t *testing.T) {
	_, err := execute(t, "invoke", "--op", "add", "--backend", "sqlite", "1", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires --store")
}

func TestInvoke_InvalidBackend(t *testing.T) {
	_, err := execute(t, "invoke", "--op", "add", "--backend", "etcd", "1", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid backend")
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "invoke", "--op", "add", "1", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRun_Manifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	data := "tasks:\n" +
		"  - operation: multiply\n" +
		"    operands: [7, 6]\n" +
		"  - operation: add\n" +
		"    operands: [123.45, 678.90]\n" +
		"    max_lifetime: 5s\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	out, err := execute(t, "run", path)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "run_manifest", []byte(out))
}

func TestRun_RejectsInvalidManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tasks:\n  - operation: add\n    operands: []\n"), 0o644))

	_, err := execute(t, "run", path)
	require.Error(t, err)
}

func TestScan_CleanTree(t *testing.T) {
	dir := t.TempDir()
	src := "package demo\n\nimport \"time\"\n\nvar _ = time.AfterFunc\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.go"), []byte(src), 0o644))

	out, err := execute(t, "scan", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "compliant")
}

func TestScan_ReportsFindings(t *testing.T) {
	dir := t.TempDir()
	src := "package demo\n\nimport \"time\"\n\nvar _ = time.NewTicker\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.go"), []byte(src), 0o644))

	out, err := execute(t, "scan", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disallowed identifier")
	assert.Contains(t, out, "demo.go:5")
}

func TestScan_JSONEmptyArray(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.go"), []byte("package demo\n"), 0o644))

	out, err := execute(t, "--format", "json", "scan", dir)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}
