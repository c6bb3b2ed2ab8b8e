// internal/service/crowd/tracker.go

package crowd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"crowdbalance/internal/domain/crowd"
)

// LocationStore defines storage for locations and their activity logs.
// AppendEvent and PruneEvents must be atomic with respect to each other so
// that a sweep racing a concurrent append cannot drop the appended event.
type LocationStore interface {
	CreateLocation(ctx context.Context, loc crowd.Location) error
	GetLocation(ctx context.Context, id string) (*crowd.Location, error)
	FindLocations(ctx context.Context, includeInactive bool) ([]crowd.Location, error)
	UpdateLocation(ctx context.Context, loc crowd.Location) error
	AppendEvent(ctx context.Context, locationID string, e crowd.Event) error
	PruneEvents(ctx context.Context, locationID string, cutoff time.Time) (int, error)
}

// TrackerConfig contains configuration for the crowd tracker
type TrackerConfig struct {
	Retention   time.Duration
	EventsTopic string
}

// Tracker implements the crowd.Tracker interface
type Tracker struct {
	store    LocationStore
	eventBus *nats.Conn
	config   TrackerConfig
	now      func() time.Time
}

// NewTracker creates a new crowd tracker
func NewTracker(store LocationStore, eventBus *nats.Conn, config TrackerConfig) *Tracker {
	if config.Retention <= 0 {
		config.Retention = crowd.DefaultRetention
	}
	if config.EventsTopic == "" {
		config.EventsTopic = "crowd.location"
	}

	return &Tracker{
		store:    store,
		eventBus: eventBus,
		config:   config,
		now:      time.Now,
	}
}

// CreateLocation registers a new venue location with an empty activity log
func (t *Tracker) CreateLocation(ctx context.Context, name string, capacity int) (*crowd.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", crowd.ErrValidation)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive", crowd.ErrValidation)
	}

	now := t.now()
	loc := crowd.Location{
		ID:                 uuid.NewString(),
		Name:               name,
		Capacity:           capacity,
		IsActive:           true,
		AssignedOrganizers: []string{},
		ActivityLog:        crowd.ActivityLog{},
		LastUpdated:        now,
		CreatedAt:          now,
	}

	if err := t.store.CreateLocation(ctx, loc); err != nil {
		return nil, err
	}

	return &loc, nil
}

// GetLocation returns a location with its derived scores
func (t *Tracker) GetLocation(ctx context.Context, id string) (*crowd.LocationStatus, error) {
	loc, err := t.store.GetLocation(ctx, id)
	if err != nil {
		return nil, err
	}

	status := t.statusFor(*loc)
	return &status, nil
}

// ListLocations returns all active locations with derived scores
func (t *Tracker) ListLocations(ctx context.Context) ([]crowd.LocationStatus, error) {
	locations, err := t.store.FindLocations(ctx, false)
	if err != nil {
		return nil, err
	}

	statuses := make([]crowd.LocationStatus, 0, len(locations))
	for _, loc := range locations {
		statuses = append(statuses, t.statusFor(loc))
	}

	return statuses, nil
}

// UpdateLocation updates a location's details
func (t *Tracker) UpdateLocation(ctx context.Context, id string, update crowd.LocationUpdate) (*crowd.Location, error) {
	loc, err := t.store.GetLocation(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", crowd.ErrValidation)
		}
		loc.Name = name
	}

	if update.Capacity != nil {
		if *update.Capacity <= 0 {
			return nil, fmt.Errorf("%w: capacity must be positive", crowd.ErrValidation)
		}
		loc.Capacity = *update.Capacity
	}

	loc.LastUpdated = t.now()

	if err := t.store.UpdateLocation(ctx, *loc); err != nil {
		return nil, err
	}

	return loc, nil
}

// DeactivateLocation soft-deletes a location. Its activity log stays in
// place until the sweeper expires it.
func (t *Tracker) DeactivateLocation(ctx context.Context, id string) error {
	loc, err := t.store.GetLocation(ctx, id)
	if err != nil {
		return err
	}

	loc.IsActive = false
	loc.LastUpdated = t.now()

	return t.store.UpdateLocation(ctx, *loc)
}

// AssignOrganizers replaces the set of organizers assigned to a location
func (t *Tracker) AssignOrganizers(ctx context.Context, id string, organizerIDs []string) (*crowd.Location, error) {
	loc, err := t.store.GetLocation(ctx, id)
	if err != nil {
		return nil, err
	}

	loc.AssignedOrganizers = organizerIDs
	loc.LastUpdated = t.now()

	if err := t.store.UpdateLocation(ctx, *loc); err != nil {
		return nil, err
	}

	return loc, nil
}

// RecordEvent appends a crowd report and returns freshly computed scores
// for the default window. A persistence failure means the event was not
// committed; the error propagates to the caller.
func (t *Tracker) RecordEvent(ctx context.Context, locationID string, level crowd.Level, reporterID string, at time.Time) (*crowd.Score, error) {
	if _, err := crowd.ParseLevel(string(level)); err != nil {
		return nil, err
	}

	now := t.now()
	if at.IsZero() {
		at = now
	}
	if reporterID == "" {
		reporterID = "organizer"
	}

	e := crowd.Event{
		CrowdLevel: level,
		Timestamp:  at,
		ReporterID: reporterID,
	}

	if err := t.store.AppendEvent(ctx, locationID, e); err != nil {
		return nil, fmt.Errorf("error persisting event: %w", err)
	}

	loc, err := t.store.GetLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	score := crowd.Aggregate(loc.ActivityLog.EventsWithin(now, t.config.Retention))
	t.publishScores(locationID, score, now)

	return &score, nil
}

// GetScores computes scores over events within the window
func (t *Tracker) GetScores(ctx context.Context, locationID string, window time.Duration) (*crowd.Score, error) {
	loc, err := t.store.GetLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	score := crowd.Aggregate(loc.ActivityLog.EventsWithin(t.now(), window))
	return &score, nil
}

// ListRecentEvents returns events within the window, newest first
func (t *Tracker) ListRecentEvents(ctx context.Context, locationID string, window time.Duration) ([]crowd.Event, error) {
	loc, err := t.store.GetLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	return crowd.NewestFirst(loc.ActivityLog.EventsWithin(t.now(), window)), nil
}

// statusFor derives full-window and last-hour scores for a location.
// Scores always re-filter by timestamp, so they are correct even before
// the sweeper has run.
func (t *Tracker) statusFor(loc crowd.Location) crowd.LocationStatus {
	now := t.now()

	return crowd.LocationStatus{
		Location:       loc,
		Scores:         crowd.Aggregate(loc.ActivityLog.EventsWithin(now, t.config.Retention)),
		LastHourScores: crowd.Aggregate(loc.ActivityLog.EventsWithin(now, time.Hour)),
	}
}

// publishScores fans out fresh scores on the event bus. Delivery is best
// effort; a publish failure never fails the write that produced the scores.
func (t *Tracker) publishScores(locationID string, score crowd.Score, at time.Time) {
	if t.eventBus == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type":        "scores",
		"location_id": locationID,
		"scores":      score,
		"time":        at,
	})
	if err != nil {
		log.Printf("Failed to marshal score update: %v", err)
		return
	}

	topic := fmt.Sprintf("%s.%s.scores", t.config.EventsTopic, locationID)
	if err := t.eventBus.Publish(topic, payload); err != nil {
		log.Printf("Failed to publish score update: %v", err)
	}
}
