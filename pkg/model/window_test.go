package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowContainsDelayAdjusted(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, Timezone())
	window := NewWindow(now, DefaultWindowBefore, DefaultWindowAfter)

	scheduled := time.Date(2025, 1, 1, 8, 35, 0, 0, Timezone())

	// 08:35 on time is before the 09:00 window start.
	assert.False(t, window.Contains(scheduled, 0))

	// With 95 minutes of delay the effective time is 10:10.
	assert.True(t, window.Contains(scheduled, 95))
}

func TestWindowBoundsInclusive(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, Timezone())
	window := NewWindow(now, 90*time.Minute, 3*time.Hour)

	assert.True(t, window.Contains(window.Start, 0))
	assert.True(t, window.Contains(window.End, 0))
	assert.False(t, window.Contains(window.End.Add(time.Minute), 0))
}

func TestFilterCurrent(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, Timezone())
	window := NewWindow(now, 90*time.Minute, 3*time.Hour)

	inside := time.Date(2025, 1, 1, 11, 0, 0, 0, Timezone())
	outside := time.Date(2025, 1, 1, 17, 0, 0, 0, Timezone())

	rows := []BoardRow{
		{TrainID: "IR1621", DepartureAt: &inside},
		{TrainID: "R2872", DepartureAt: &outside},
		{TrainID: "IC536"},
	}

	current := FilterCurrent(rows, window)

	require.Len(t, current, 1)
	assert.Equal(t, "IR1621", current[0].TrainID)
}

func TestPinClockRollsOverMidnight(t *testing.T) {
	lateEvening := time.Date(2025, 1, 1, 22, 30, 0, 0, Timezone())

	pinned := PinClock("00:45", lateEvening)
	require.NotNil(t, pinned)
	assert.Equal(t, 2, pinned.Day(), "a small-hours clock seen late in the evening belongs to tomorrow")

	earlyMorning := time.Date(2025, 1, 2, 1, 15, 0, 0, Timezone())
	pinned = PinClock("23:10", earlyMorning)
	require.NotNil(t, pinned)
	assert.Equal(t, 1, pinned.Day(), "a late clock seen in the small hours belongs to yesterday")
}

func TestPinClockMidnightAnchorStaysOnDay(t *testing.T) {
	futureDay := time.Date(2025, 3, 10, 0, 0, 0, 0, Timezone())

	pinned := PinClock("23:40", futureDay)
	require.NotNil(t, pinned)
	assert.Equal(t, 10, pinned.Day())
}

func TestPinClockRejectsGarbage(t *testing.T) {
	assert.Nil(t, PinClock("not a time", time.Now()))
	assert.Nil(t, PinClock("25:99", time.Now()))
}
