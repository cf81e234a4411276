package registry

import (
	"encoding/json"
	"fmt"
)

// Rounding modes accepted in Preferences.RoundingMode.
const (
	// RoundingModeHalfAway rounds ties away from zero. This is the default
	// when no mode is stored.
	RoundingModeHalfAway = "half-away"

	// RoundingModeHalfEven rounds ties to the nearest even digit
	// (banker's rounding).
	RoundingModeHalfEven = "half-even"
)

// Preferences is the immutable per-execution preference record read through
// the broker. The zero value is the empty record: no precision, default
// rounding. An absent stored value always resolves to the zero value,
// never to an error.
type Preferences struct {
	// Precision is the number of decimal digits to round to.
	// Nil means "not set" - results are returned at full float precision.
	Precision *int `json:"precision,omitempty"`

	// RoundingMode selects the tie-breaking rule when Precision is set.
	// Empty means RoundingModeHalfAway.
	RoundingMode string `json:"roundingMode,omitempty"`
}

// DecodePreferences parses the raw broker value into a Preferences record.
// A nil or empty value decodes to the zero Preferences.
func DecodePreferences(raw []byte) (Preferences, error) {
	var prefs Preferences
	if len(raw) == 0 {
		return prefs, nil
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return Preferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	if prefs.Precision != nil && *prefs.Precision < 0 {
		return Preferences{}, fmt.Errorf("decode preferences: precision must be non-negative, got %d", *prefs.Precision)
	}
	return prefs, nil
}

// Encode serializes the preferences for storage through a broker.
func (p Preferences) Encode() ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}
	return raw, nil
}
