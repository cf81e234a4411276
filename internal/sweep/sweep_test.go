package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name     string
	Operands []float64
	Raw      []byte
	Nested   *record
	hidden   string
}

// TestSweep_StructFieldsNulled verifies every exported field of a struct
// record is zeroed.
func TestSweep_StructFieldsNulled(t *testing.T) {
	rec := &record{
		Name:     "divide",
		Operands: []float64{22, 7},
		Raw:      []byte(`{"precision":2}`),
		hidden:   "kept",
	}

	nulled := Sweep(rec)

	assert.Equal(t, 4, nulled)
	assert.Empty(t, rec.Name)
	assert.Nil(t, rec.Operands)
	assert.Nil(t, rec.Raw)
	assert.Nil(t, rec.Nested)
	assert.Equal(t, "kept", rec.hidden, "unexported fields are out of reach")
}

// TestSweep_WipesBeforeRelease verifies slice contents are overwritten in
// place, not just dereferenced.
func TestSweep_WipesBeforeRelease(t *testing.T) {
	operands := []float64{22, 7}
	raw := []byte("sensitive")
	rec := &record{Operands: operands, Raw: raw}

	Sweep(rec)

	for i, v := range operands {
		assert.Zero(t, v, "operand %d not wiped", i)
	}
	for i, b := range raw {
		assert.Zero(t, b, "byte %d not wiped", i)
	}
}

// TestSweep_ShallowOnly verifies the sweep never recurses into nested
// records.
func TestSweep_ShallowOnly(t *testing.T) {
	inner := &record{Name: "inner", Operands: []float64{1}}
	outer := &record{Name: "outer", Nested: inner}

	Sweep(outer)

	assert.Nil(t, outer.Nested, "outer reference dropped")
	assert.Equal(t, "inner", inner.Name, "nested record untouched")
	assert.Equal(t, []float64{1}, inner.Operands)
}

// TestSweep_MapValuesNulledKeysKept verifies map records keep their keys.
func TestSweep_MapValuesNulledKeysKept(t *testing.T) {
	m := map[string]any{
		"operands": []float64{1, 2},
		"result":   42.0,
	}

	nulled := Sweep(m)

	assert.Equal(t, 2, nulled)
	require.Len(t, m, 2)
	assert.Nil(t, m["operands"])
	assert.Nil(t, m["result"])
}

// TestSweep_NonRecordsUntouched verifies bare values are left alone.
func TestSweep_NonRecordsUntouched(t *testing.T) {
	n := 42
	s := "secret"
	xs := []float64{1, 2}

	nulled := Sweep(nil, n, s, xs, (*record)(nil), map[int]any{1: "x"})

	assert.Zero(t, nulled)
	assert.Equal(t, 42, n)
	assert.Equal(t, "secret", s)
	assert.Equal(t, []float64{1, 2}, xs)
}

// TestSweep_Idempotent verifies a second sweep observes nothing left to
// null beyond re-zeroing already-zero fields.
func TestSweep_Idempotent(t *testing.T) {
	rec := &record{Name: "add", Operands: []float64{1}}
	Sweep(rec)

	again := *rec
	Sweep(rec)
	assert.Equal(t, again, *rec)
}

// TestReclaimers exercises both hint implementations.
func TestReclaimers(t *testing.T) {
	// Neither may block or panic.
	NopReclaimer{}.Hint()
	RuntimeReclaimer{}.Hint()
}
