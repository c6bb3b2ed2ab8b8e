// internal/domain/crowd/tracker.go

package crowd

import (
	"context"
	"time"
)

// Tracker defines the interface for crowd tracking across locations
type Tracker interface {
	// CreateLocation registers a new venue location with an empty activity log
	CreateLocation(ctx context.Context, name string, capacity int) (*Location, error)

	// GetLocation returns a location with its derived scores
	GetLocation(ctx context.Context, id string) (*LocationStatus, error)

	// ListLocations returns all active locations with derived scores
	ListLocations(ctx context.Context) ([]LocationStatus, error)

	// UpdateLocation updates a location's details
	UpdateLocation(ctx context.Context, id string, update LocationUpdate) (*Location, error)

	// DeactivateLocation soft-deletes a location
	DeactivateLocation(ctx context.Context, id string) error

	// AssignOrganizers replaces the set of organizers assigned to a location
	AssignOrganizers(ctx context.Context, id string, organizerIDs []string) (*Location, error)

	// RecordEvent appends a crowd report and returns freshly computed scores
	// for the default window. A zero timestamp means "now".
	RecordEvent(ctx context.Context, locationID string, level Level, reporterID string, at time.Time) (*Score, error)

	// GetScores computes scores over events within the window. A non-positive
	// window means the default retention window.
	GetScores(ctx context.Context, locationID string, window time.Duration) (*Score, error)

	// ListRecentEvents returns events within the window, newest first
	ListRecentEvents(ctx context.Context, locationID string, window time.Duration) ([]Event, error)
}

// SweepFailure records one location that could not be pruned or persisted
type SweepFailure struct {
	LocationID string `json:"location_id"`
	Error      string `json:"error"`
}

// SweepReport summarizes one pass of expiry pruning across all locations.
// Per-location failures are collected here instead of aborting the pass.
type SweepReport struct {
	Swept    int            `json:"swept"`
	Failed   int            `json:"failed"`
	Removed  int            `json:"removed"`
	Failures []SweepFailure `json:"failures,omitempty"`
}
