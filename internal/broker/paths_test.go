package broker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalizePath verifies NFC canonicalization.
func TestNormalizePath(t *testing.T) {
	composed := "caf\u00e9/preferences"   // e-acute as one rune
	decomposed := "cafe\u0301/preferences" // e + combining acute
	assert.Equal(t, composed, NormalizePath(decomposed))
	assert.Equal(t, "plain/path", NormalizePath("plain/path"))
}

// TestNormalizePath_BackendAgreement verifies both Unicode compositions
// address the same slot through a backend.
func TestNormalizePath_BackendAgreement(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Write(ctx, "cafe\u0301/prefs", []byte("v")))

	v, ok, err := m.Read(ctx, "caf\u00e9/prefs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}
