// internal/domain/crowd/log_test.go

package crowd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendValidatesLevel(t *testing.T) {
	now := time.Now()

	var log ActivityLog
	_, err := log.Append("busy", time.Time{}, now, "org-1")
	assert.ErrorIs(t, err, ErrInvalidLevel)
	assert.Empty(t, log)

	e, err := log.Append(LevelModerate, time.Time{}, now, "org-1")
	require.NoError(t, err)
	assert.Equal(t, now, e.Timestamp, "zero timestamp defaults to append time")
	assert.Len(t, log, 1)
}

func TestEventsWithinBoundaryIsStrict(t *testing.T) {
	now := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	window := 60 * time.Minute

	log := ActivityLog{
		{CrowdLevel: LevelMin, Timestamp: now.Add(-window)},                  // exactly at boundary
		{CrowdLevel: LevelModerate, Timestamp: now.Add(-window + time.Second)}, // just inside
		{CrowdLevel: LevelMax, Timestamp: now.Add(-window - time.Second)},      // just outside
		{CrowdLevel: LevelMax, Timestamp: now},
	}

	current := log.EventsWithin(now, window)

	require.Len(t, current, 2)
	assert.Equal(t, LevelModerate, current[0].CrowdLevel)
	assert.Equal(t, LevelMax, current[1].CrowdLevel)
}

func TestEventsWithinDefaultsToRetention(t *testing.T) {
	now := time.Now()

	log := ActivityLog{
		{CrowdLevel: LevelMin, Timestamp: now.Add(-2 * time.Hour)},
		{CrowdLevel: LevelMax, Timestamp: now.Add(-30 * time.Minute)},
	}

	assert.Len(t, log.EventsWithin(now, 0), 1)
	assert.Len(t, log, 2, "filtering never mutates the log")
}

func TestAggregateOverWindowIsIdempotent(t *testing.T) {
	now := time.Now()

	log := ActivityLog{
		{CrowdLevel: LevelMax, Timestamp: now.Add(-10 * time.Minute)},
		{CrowdLevel: LevelMin, Timestamp: now.Add(-90 * time.Minute)},
		{CrowdLevel: LevelModerate, Timestamp: now.Add(-5 * time.Minute)},
	}

	first := Aggregate(log.EventsWithin(now, DefaultRetention))
	second := Aggregate(log.EventsWithin(now, DefaultRetention))

	assert.Equal(t, first, second)
	assert.Equal(t, 2, first.Total)
}

func TestPruneIsIdempotent(t *testing.T) {
	now := time.Now()

	log := ActivityLog{
		{CrowdLevel: LevelMin, Timestamp: now.Add(-2 * time.Hour)},
		{CrowdLevel: LevelMax, Timestamp: now.Add(-61 * time.Minute)},
		{CrowdLevel: LevelMax, Timestamp: now.Add(-59 * time.Minute)},
	}

	removed := log.Prune(now, DefaultRetention)
	assert.Equal(t, 2, removed)
	assert.Len(t, log, 1)

	removed = log.Prune(now, DefaultRetention)
	assert.Equal(t, 0, removed, "second prune with no intervening append removes nothing")
	assert.Len(t, log, 1)
}

func TestLatestUsesArrivalOrder(t *testing.T) {
	now := time.Now()

	var log ActivityLog
	_, err := log.Append(LevelMax, now.Add(time.Minute), now, "org-1") // skewed clock, ahead of the next report
	require.NoError(t, err)
	_, err = log.Append(LevelMin, now, now, "org-2")
	require.NoError(t, err)

	latest, ok := log.Latest()
	require.True(t, ok)
	assert.Equal(t, LevelMin, latest.CrowdLevel, "arrival order is authoritative for latest")
}

func TestNewestFirst(t *testing.T) {
	now := time.Now()

	events := []Event{
		{CrowdLevel: LevelMin, Timestamp: now.Add(-3 * time.Minute)},
		{CrowdLevel: LevelMax, Timestamp: now},
		{CrowdLevel: LevelModerate, Timestamp: now.Add(-1 * time.Minute)},
	}

	ordered := NewestFirst(events)

	require.Len(t, ordered, 3)
	assert.Equal(t, LevelMax, ordered[0].CrowdLevel)
	assert.Equal(t, LevelModerate, ordered[1].CrowdLevel)
	assert.Equal(t, LevelMin, ordered[2].CrowdLevel)
	assert.Equal(t, LevelMin, events[0].CrowdLevel, "input slice is not reordered")
}
