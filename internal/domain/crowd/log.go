// internal/domain/crowd/log.go

package crowd

import (
	"sort"
	"time"
)

// ActivityLog is the ordered set of crowd reports for one location.
// Insertion order is arrival order, which is authoritative for "latest"
// even under clock skew between reporters.
type ActivityLog []Event

// Append adds a new event to the log. The level must belong to the closed
// set of crowd levels. A zero timestamp defaults to now. Append does not
// touch the owning location's LastUpdated; the caller updates it as part of
// the same logical mutation.
func (l *ActivityLog) Append(level Level, at time.Time, now time.Time, reporterID string) (Event, error) {
	if _, err := ParseLevel(string(level)); err != nil {
		return Event{}, err
	}

	if at.IsZero() {
		at = now
	}

	e := Event{
		CrowdLevel: level,
		Timestamp:  at,
		ReporterID: reporterID,
	}

	*l = append(*l, e)
	return e, nil
}

// EventsWithin returns the events still current relative to now: those with
// now - timestamp < window. An event exactly at the boundary is excluded.
// A non-positive window means the default retention window. The log is
// never mutated; expired events are merely filtered out.
func (l ActivityLog) EventsWithin(now time.Time, window time.Duration) []Event {
	if window <= 0 {
		window = DefaultRetention
	}

	cutoff := now.Add(-window)

	var current []Event
	for _, e := range l {
		if e.Timestamp.After(cutoff) {
			current = append(current, e)
		}
	}

	return current
}

// Prune physically removes events older than the retention window and
// returns how many were removed. Pruning twice with no intervening append
// removes nothing the second time.
func (l *ActivityLog) Prune(now time.Time, retention time.Duration) int {
	if retention <= 0 {
		retention = DefaultRetention
	}

	cutoff := now.Add(-retention)

	kept := (*l)[:0]
	for _, e := range *l {
		if e.Timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}

	removed := len(*l) - len(kept)
	*l = kept
	return removed
}

// Latest returns the most recently appended event. Arrival order wins over
// timestamp order here.
func (l ActivityLog) Latest() (Event, bool) {
	if len(l) == 0 {
		return Event{}, false
	}
	return l[len(l)-1], true
}

// NewestFirst returns a copy of the given events sorted newest first by
// timestamp, for activity-feed display.
func NewestFirst(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	return out
}
