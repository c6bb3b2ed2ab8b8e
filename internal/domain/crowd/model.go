// internal/domain/crowd/model.go

package crowd

import (
	"errors"
	"fmt"
	"time"
)

// Level classifies how crowded a location is at a point in time
type Level string

const (
	LevelMin      Level = "min"
	LevelModerate Level = "moderate"
	LevelMax      Level = "max"
)

// DefaultRetention is the rolling window used both for score computation
// and for physical expiry of activity events. Filtering and deletion must
// share this constant so a reader's view and the sweeper's deletions never
// disagree.
const DefaultRetention = 60 * time.Minute

// Common errors
var (
	ErrNotFound      = errors.New("location not found")
	ErrInvalidLevel  = errors.New("invalid crowd level")
	ErrDuplicateName = errors.New("location name already exists")
	ErrValidation    = errors.New("validation failed")
)

// ParseLevel validates a wire token against the closed set of crowd levels.
// Unknown values are rejected, never coerced.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelMin, LevelModerate, LevelMax:
		return Level(s), nil
	default:
		return "", fmt.Errorf("%w: %q (use: min, moderate, or max)", ErrInvalidLevel, s)
	}
}

// Event is a single timestamped crowd-level report tied to one location.
// Events are immutable after creation.
type Event struct {
	CrowdLevel Level     `json:"crowd_level"`
	Timestamp  time.Time `json:"timestamp"`
	ReporterID string    `json:"reporter_id,omitempty"`
}

// Location represents a named venue area that organizers report on
type Location struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Capacity           int         `json:"capacity"`
	IsActive           bool        `json:"is_active"`
	AssignedOrganizers []string    `json:"assigned_organizers"`
	ActivityLog        ActivityLog `json:"activity_log"`
	LastUpdated        time.Time   `json:"last_updated"`
	CreatedAt          time.Time   `json:"created_at"`
}

// LocationUpdate carries optional field updates for a location
type LocationUpdate struct {
	Name     *string `json:"name"`
	Capacity *int    `json:"capacity"`
}

// LocationStatus is a location together with its derived scores. Scores are
// never persisted; they are recomputed from the activity log on every read.
type LocationStatus struct {
	Location
	Scores         Score `json:"scores"`
	LastHourScores Score `json:"last_hour_scores"`
}
