// internal/domain/crowd/score_test.go

package crowd

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventsFor(counts Counts) []Event {
	var events []Event
	for i := 0; i < counts.Min; i++ {
		events = append(events, Event{CrowdLevel: LevelMin, Timestamp: time.Now()})
	}
	for i := 0; i < counts.Moderate; i++ {
		events = append(events, Event{CrowdLevel: LevelModerate, Timestamp: time.Now()})
	}
	for i := 0; i < counts.Max; i++ {
		events = append(events, Event{CrowdLevel: LevelMax, Timestamp: time.Now()})
	}
	return events
}

func TestAggregateDominantPrecedence(t *testing.T) {
	cases := []struct {
		name       string
		counts     Counts
		dominant   string
		percentage int
	}{
		{"empty log", Counts{}, DominantNoData, 0},
		{"three-way tie goes to max", Counts{Min: 3, Moderate: 3, Max: 3}, "max", 33},
		{"moderate ties min when max does not qualify", Counts{Min: 2, Moderate: 2, Max: 1}, "moderate", 40},
		{"min wins only outright", Counts{Min: 5, Moderate: 1, Max: 0}, "min", 83},
		{"max ties moderate", Counts{Min: 0, Moderate: 4, Max: 4}, "max", 50},
		{"max ties min", Counts{Min: 2, Moderate: 1, Max: 2}, "max", 40},
		{"single max report", Counts{Max: 1}, "max", 100},
		{"moderate outright", Counts{Min: 1, Moderate: 6, Max: 2}, "moderate", 67},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Aggregate(eventsFor(tc.counts))

			assert.Equal(t, tc.counts, s.Counts)
			assert.Equal(t, tc.dominant, s.Dominant)
			assert.Equal(t, tc.percentage, s.Percentage)
			assert.Equal(t, s.Counts.Min+s.Counts.Moderate+s.Counts.Max, s.Total)
		})
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	events := eventsFor(Counts{Min: 4, Moderate: 7, Max: 2})
	want := Aggregate(events)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(events), func(a, b int) {
			events[a], events[b] = events[b], events[a]
		})
		assert.Equal(t, want, Aggregate(events))
	}
}

func TestAggregateCountsUnrecognizedLevelsAsAnomalies(t *testing.T) {
	events := append(eventsFor(Counts{Min: 1, Max: 1}), Event{CrowdLevel: "extreme", Timestamp: time.Now()})

	s := Aggregate(events)

	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Anomalies)
	assert.Equal(t, "max", s.Dominant)
}

func TestParseLevel(t *testing.T) {
	for _, valid := range []string{"min", "moderate", "max"} {
		level, err := ParseLevel(valid)
		require.NoError(t, err)
		assert.Equal(t, Level(valid), level)
	}

	for _, invalid := range []string{"", "MAX", "medium", "high"} {
		_, err := ParseLevel(invalid)
		assert.ErrorIs(t, err, ErrInvalidLevel, "level %q", invalid)
	}
}
