// Package sweep implements the cleanup sweeper: a shallow sanitizer that
// nulls every field of a set of mutable records and issues a best-effort
// memory-reclamation hint.
//
// The sweep is single-level. Struct fields holding nested pointers are set
// to nil but the pointed-to values are not recursed into; callers that want
// nested data swept must pass those records explicitly. Sensitive byte
// buffers are wiped in place (memguard) before the reference is dropped, so
// the plaintext does not linger in reachable memory waiting for collection.
package sweep

import (
	"reflect"

	"github.com/awnumar/memguard"
)

// Sweep zeroes every settable field of each record and returns the total
// number of fields nulled.
//
// Accepted record shapes:
//   - pointer to struct: every exported, settable field is set to its zero
//     value. []byte fields are wiped before release; []float64 fields are
//     zero-filled before release.
//   - map with string keys: every value is set to the map's zero element
//     (nil for interface/pointer values). Keys are kept, never deleted.
//
// Anything else (numbers, strings, bare slices, nil) is left untouched;
// callers are responsible for enclosing such values in records first.
func Sweep(recs ...any) int {
	nulled := 0
	for _, rec := range recs {
		nulled += sweepOne(rec)
	}
	return nulled
}

func sweepOne(rec any) int {
	if rec == nil {
		return 0
	}
	v := reflect.ValueOf(rec)
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() || v.Elem().Kind() != reflect.Struct {
			return 0
		}
		return sweepStruct(v.Elem())
	case reflect.Map:
		if v.IsNil() || v.Type().Key().Kind() != reflect.String {
			return 0
		}
		return sweepMap(v)
	default:
		return 0
	}
}

// sweepStruct zeroes each settable field of a struct value.
func sweepStruct(v reflect.Value) int {
	nulled := 0
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if !f.CanSet() {
			continue
		}
		scrub(f)
		f.SetZero()
		nulled++
	}
	return nulled
}

// sweepMap nulls each value of a string-keyed map without deleting keys.
func sweepMap(v reflect.Value) int {
	zero := reflect.Zero(v.Type().Elem())
	nulled := 0
	iter := v.MapRange()
	for iter.Next() {
		v.SetMapIndex(iter.Key(), zero)
		nulled++
	}
	return nulled
}

// scrub overwrites slice contents in place before the reference is dropped.
// Byte slices go through memguard's constant-time wipe; float slices are
// zero-filled directly.
func scrub(f reflect.Value) {
	if f.Kind() != reflect.Slice || f.IsNil() {
		return
	}
	switch f.Type().Elem().Kind() {
	case reflect.Uint8:
		if b, ok := f.Interface().([]byte); ok {
			memguard.WipeBytes(b)
		}
	case reflect.Float64:
		if fs, ok := f.Interface().([]float64); ok {
			for i := range fs {
				fs[i] = 0
			}
		}
	}
}
