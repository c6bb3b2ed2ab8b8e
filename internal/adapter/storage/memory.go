// internal/adapter/storage/memory.go

package storage

import (
	"context"
	"sync"
	"time"

	"crowdbalance/internal/domain/crowd"
)

// MemoryLocationStore is an in-memory location store with the same
// concurrency contract as the Postgres store: appends and prunes are atomic
// under one lock, so a sweep racing a concurrent append can never drop the
// appended event. Used by tests and local development.
type MemoryLocationStore struct {
	mu        sync.RWMutex
	locations map[string]*crowd.Location

	// AppendErr and PruneErr, when set, force the corresponding operation to
	// fail. Tests use them to exercise persistence-failure paths.
	AppendErr error
	PruneErr  error
}

// NewMemoryLocationStore creates an empty in-memory store
func NewMemoryLocationStore() *MemoryLocationStore {
	return &MemoryLocationStore{
		locations: make(map[string]*crowd.Location),
	}
}

// CreateLocation saves a new location
func (s *MemoryLocationStore) CreateLocation(ctx context.Context, loc crowd.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.locations {
		if existing.Name == loc.Name {
			return crowd.ErrDuplicateName
		}
	}

	stored := loc
	stored.ActivityLog = append(crowd.ActivityLog(nil), loc.ActivityLog...)
	s.locations[loc.ID] = &stored
	return nil
}

// GetLocation retrieves a location by ID
func (s *MemoryLocationStore) GetLocation(ctx context.Context, id string) (*crowd.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loc, ok := s.locations[id]
	if !ok {
		return nil, crowd.ErrNotFound
	}

	return copyLocation(loc), nil
}

// FindLocations returns all locations, optionally including inactive ones
func (s *MemoryLocationStore) FindLocations(ctx context.Context, includeInactive bool) ([]crowd.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var locations []crowd.Location
	for _, loc := range s.locations {
		if !includeInactive && !loc.IsActive {
			continue
		}
		locations = append(locations, *copyLocation(loc))
	}

	return locations, nil
}

// UpdateLocation saves updated location details without touching the log
func (s *MemoryLocationStore) UpdateLocation(ctx context.Context, loc crowd.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.locations[loc.ID]
	if !ok {
		return crowd.ErrNotFound
	}

	for id, existing := range s.locations {
		if id != loc.ID && existing.Name == loc.Name {
			return crowd.ErrDuplicateName
		}
	}

	stored.Name = loc.Name
	stored.Capacity = loc.Capacity
	stored.IsActive = loc.IsActive
	stored.AssignedOrganizers = append([]string(nil), loc.AssignedOrganizers...)
	stored.LastUpdated = loc.LastUpdated
	return nil
}

// AppendEvent atomically appends one event and bumps last_updated
func (s *MemoryLocationStore) AppendEvent(ctx context.Context, locationID string, e crowd.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.AppendErr != nil {
		return s.AppendErr
	}

	loc, ok := s.locations[locationID]
	if !ok {
		return crowd.ErrNotFound
	}

	loc.ActivityLog = append(loc.ActivityLog, e)
	loc.LastUpdated = e.Timestamp
	return nil
}

// PruneEvents removes events recorded at or before the cutoff
func (s *MemoryLocationStore) PruneEvents(ctx context.Context, locationID string, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.PruneErr != nil {
		return 0, s.PruneErr
	}

	loc, ok := s.locations[locationID]
	if !ok {
		return 0, crowd.ErrNotFound
	}

	kept := loc.ActivityLog[:0]
	for _, e := range loc.ActivityLog {
		if e.Timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}

	removed := len(loc.ActivityLog) - len(kept)
	loc.ActivityLog = kept
	return removed, nil
}

func copyLocation(loc *crowd.Location) *crowd.Location {
	out := *loc
	out.ActivityLog = append(crowd.ActivityLog(nil), loc.ActivityLog...)
	out.AssignedOrganizers = append([]string(nil), loc.AssignedOrganizers...)
	return &out
}
