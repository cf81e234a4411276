package broker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "broker.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

// TestSQLite_ReadWriteDelete covers the basic contract against a real
// database file.
func TestSQLite_ReadWriteDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestSQLite(t)

	_, ok, err := s.Read(ctx, "calculator/preferences")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Write(ctx, "calculator/preferences", []byte(`{"precision":2}`)))

	v, ok, err := s.Read(ctx, "calculator/preferences")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"precision":2}`), v)

	// Overwrite is an upsert.
	require.NoError(t, s.Write(ctx, "calculator/preferences", []byte(`{"precision":4}`)))
	v, _, err = s.Read(ctx, "calculator/preferences")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"precision":4}`), v)

	require.NoError(t, s.Delete(ctx, "calculator/preferences"))
	_, ok, err = s.Read(ctx, "calculator/preferences")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestSQLite_PersistsAcrossReopen verifies durability on the same file.
func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTestSQLite(t)

	require.NoError(t, s.Write(ctx, "p", []byte("v")))
	require.NoError(t, s.Close())

	s2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s2.Close()

	v, ok, err := s2.Read(ctx, "p")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

// TestSQLite_SchemaVersion verifies the user_version stamp.
func TestSQLite_SchemaVersion(t *testing.T) {
	s, _ := openTestSQLite(t)

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

// TestSQLite_HandlesReturnToZero verifies handle accounting.
func TestSQLite_HandlesReturnToZero(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestSQLite(t)

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Write(ctx, "p", []byte("v")))
		_, _, err := s.Read(ctx, "p")
		require.NoError(t, err)
	}
	require.NoError(t, s.Delete(ctx, "p"))

	assert.EqualValues(t, 0, s.ActiveHandles())
}
