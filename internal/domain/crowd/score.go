// internal/domain/crowd/score.go

package crowd

import "math"

// DominantNoData is the sentinel dominant level for an empty window
const DominantNoData = "no data"

// Counts holds per-level event counts within an evaluation window
type Counts struct {
	Min      int `json:"min"`
	Moderate int `json:"moderate"`
	Max      int `json:"max"`
}

// Score is the derived crowd state for a location. It is always recomputed
// from the activity log, never stored as running counters.
type Score struct {
	Counts     Counts `json:"counts"`
	Total      int    `json:"total"`
	Dominant   string `json:"dominant_level"`
	Percentage int    `json:"percentage"`

	// Anomalies counts events whose level made it past append validation
	// without belonging to the closed set. Such events are excluded from the
	// counts but surfaced here rather than silently dropped.
	Anomalies int `json:"anomalies,omitempty"`
}

// Aggregate turns a finite set of events into counts and a dominant level.
// It is deterministic and order-independent: identical input multisets give
// identical results.
//
// The dominant level follows a first-match precedence: max wins all ties
// against both other levels, and moderate wins ties against min only when
// max does not qualify. The asymmetry deliberately biases the system toward
// flagging crowding rather than under-reporting it.
func Aggregate(events []Event) Score {
	var s Score

	for _, e := range events {
		switch e.CrowdLevel {
		case LevelMin:
			s.Counts.Min++
		case LevelModerate:
			s.Counts.Moderate++
		case LevelMax:
			s.Counts.Max++
		default:
			s.Anomalies++
		}
	}

	s.Total = s.Counts.Min + s.Counts.Moderate + s.Counts.Max

	var dominantCount int
	switch {
	case s.Total == 0:
		s.Dominant = DominantNoData
	case s.Counts.Max >= s.Counts.Moderate && s.Counts.Max >= s.Counts.Min:
		s.Dominant = string(LevelMax)
		dominantCount = s.Counts.Max
	case s.Counts.Moderate >= s.Counts.Min:
		s.Dominant = string(LevelModerate)
		dominantCount = s.Counts.Moderate
	default:
		s.Dominant = string(LevelMin)
		dominantCount = s.Counts.Min
	}

	if s.Total > 0 {
		s.Percentage = int(math.Round(float64(dominantCount) / float64(s.Total) * 100))
	}

	return s
}
