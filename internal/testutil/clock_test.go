package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// TestManualClock_Advance verifies timers fire synchronously once their
// deadline is reached, and not before.
func TestManualClock_Advance(t *testing.T) {
	c := NewManualClock(start)
	fired := 0
	c.AfterFunc(100*time.Millisecond, func() { fired++ })

	c.Advance(50 * time.Millisecond)
	assert.Zero(t, fired)
	assert.Equal(t, 1, c.Pending())

	c.Advance(50 * time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.Zero(t, c.Pending())
	assert.Equal(t, start.Add(100*time.Millisecond), c.Now())
}

// TestManualClock_FiresInDeadlineOrder verifies ordering when one Advance
// reaches several deadlines.
func TestManualClock_FiresInDeadlineOrder(t *testing.T) {
	c := NewManualClock(start)
	var order []string
	c.AfterFunc(30*time.Millisecond, func() { order = append(order, "c") })
	c.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	c.AfterFunc(20*time.Millisecond, func() { order = append(order, "b") })

	c.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

// TestManualClock_Stop verifies stopped timers never fire and Stop reports
// its outcome like time.Timer.Stop.
func TestManualClock_Stop(t *testing.T) {
	c := NewManualClock(start)
	fired := false
	timer := c.AfterFunc(10*time.Millisecond, func() { fired = true })

	require.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second Stop reports false")
	assert.Zero(t, c.Pending())

	c.Advance(time.Second)
	assert.False(t, fired)
}

// TestManualClock_StopAfterFire verifies Stop on a fired timer reports
// false.
func TestManualClock_StopAfterFire(t *testing.T) {
	c := NewManualClock(start)
	timer := c.AfterFunc(10*time.Millisecond, func() {})

	c.Advance(10 * time.Millisecond)
	assert.False(t, timer.Stop())
}

// TestRecordingReclaimer counts hints.
func TestRecordingReclaimer(t *testing.T) {
	r := &RecordingReclaimer{}
	assert.Zero(t, r.Hints())
	r.Hint()
	r.Hint()
	assert.EqualValues(t, 2, r.Hints())
}
