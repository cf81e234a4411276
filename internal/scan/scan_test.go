package scan

import (
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanSource = `package demo

import "time"

func wait(d time.Duration, fn func()) *time.Timer {
	return time.AfterFunc(d, fn)
}
`

const dirtySource = `package demo

import "time"

func tick() {
	t := time.NewTicker(time.Second)
	defer t.Stop()
}

func report() {
	send("telemetry", nil)
}
`

// TestScanSource_Clean verifies compliant source produces no findings.
func TestScanSource_Clean(t *testing.T) {
	findings := New().ScanSource("demo.go", []byte(cleanSource))
	assert.Empty(t, findings)
}

// TestScanSource_Findings verifies matches carry file, line, and needle.
func TestScanSource_Findings(t *testing.T) {
	findings := New().ScanSource("demo.go", []byte(dirtySource))
	require.Len(t, findings, 2)

	assert.Equal(t, Finding{File: "demo.go", Line: 6, Needle: "time.NewTicker"}, findings[0])
	assert.Equal(t, Finding{File: "demo.go", Line: 11, Needle: "telemetry"}, findings[1])
	assert.Equal(t, `demo.go:6: disallowed "time.NewTicker"`, findings[0].String())
}

// TestScanSource_CustomDenylist verifies an explicit needle set replaces
// the default.
func TestScanSource_CustomDenylist(t *testing.T) {
	findings := New("AfterFunc").ScanSource("demo.go", []byte(cleanSource))
	require.Len(t, findings, 1)
	assert.Equal(t, "AfterFunc", findings[0].Needle)

	// Default needles are gone.
	assert.Empty(t, New("AfterFunc").ScanSource("demo.go", []byte(dirtySource)))
}

// TestScanFS verifies the walk covers nested .go files and skips tests
// and non-Go files.
func TestScanFS(t *testing.T) {
	fsys := fstest.MapFS{
		"engine.go":        {Data: []byte(cleanSource)},
		"nested/ticker.go": {Data: []byte(dirtySource)},
		"engine_test.go":   {Data: []byte(dirtySource)},
		"README.md":        {Data: []byte(dirtySource)},
	}

	findings, err := New().ScanFS(fsys)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	for _, f := range findings {
		assert.Equal(t, "nested/ticker.go", f.File)
	}
}

// TestScanFS_EngineCompliance scans the real lifecycle package. The
// engine's own source must be free of every default needle.
func TestScanFS_EngineCompliance(t *testing.T) {
	findings, err := New().ScanFS(os.DirFS("../lifecycle"))
	require.NoError(t, err)
	assert.Empty(t, findings, "lifecycle engine source must pass its own scan")
}
