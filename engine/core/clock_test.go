package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockMeasuresElapsedTime(t *testing.T) {
	clock := NewClock()
	assert.Zero(t, clock.Elapsed())

	clock.Start()
	time.Sleep(10 * time.Millisecond)
	clock.Update()

	elapsed := clock.Elapsed()
	assert.Greater(t, elapsed, 0.0)
	assert.Less(t, elapsed, 5.0, "elapsed time is in seconds")
}

func TestClockUpdateWithoutStart(t *testing.T) {
	clock := NewClock()
	clock.Update()
	assert.Zero(t, clock.Elapsed(), "non-started clocks do not advance")
}

func TestClockStopFreezesElapsed(t *testing.T) {
	clock := NewClock()
	clock.Start()
	time.Sleep(time.Millisecond)
	clock.Update()
	frozen := clock.Elapsed()

	clock.Stop()
	time.Sleep(time.Millisecond)
	clock.Update()
	assert.Equal(t, frozen, clock.Elapsed())
}
