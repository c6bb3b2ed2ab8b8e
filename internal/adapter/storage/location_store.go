// internal/adapter/storage/location_store.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"crowdbalance/internal/domain/crowd"
)

// LocationStore implements storage for locations and their activity logs.
// Event appends are single-row inserts and expiry pruning is a predicate
// delete, so concurrent writers on the same location never overwrite each
// other's events.
type LocationStore struct {
	db *pgxpool.Pool
}

// NewLocationStore creates a new location store
func NewLocationStore(db *pgxpool.Pool) *LocationStore {
	return &LocationStore{
		db: db,
	}
}

// CreateLocation saves a new location
func (s *LocationStore) CreateLocation(ctx context.Context, loc crowd.Location) error {
	query := `
		INSERT INTO locations (
			id, name, capacity, is_active, assigned_organizers, last_updated, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.Exec(
		ctx,
		query,
		loc.ID,
		loc.Name,
		loc.Capacity,
		loc.IsActive,
		loc.AssignedOrganizers,
		loc.LastUpdated,
		loc.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return crowd.ErrDuplicateName
		}
		return fmt.Errorf("error inserting location: %w", err)
	}

	return nil
}

// GetLocation retrieves a location by ID with its full activity log
func (s *LocationStore) GetLocation(ctx context.Context, id string) (*crowd.Location, error) {
	query := `
		SELECT id, name, capacity, is_active, assigned_organizers, last_updated, created_at
		FROM locations
		WHERE id = $1
	`

	var loc crowd.Location
	err := s.db.QueryRow(ctx, query, id).Scan(
		&loc.ID,
		&loc.Name,
		&loc.Capacity,
		&loc.IsActive,
		&loc.AssignedOrganizers,
		&loc.LastUpdated,
		&loc.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, crowd.ErrNotFound
		}
		return nil, fmt.Errorf("error querying location: %w", err)
	}

	events, err := s.loadEvents(ctx, []string{loc.ID})
	if err != nil {
		return nil, err
	}
	loc.ActivityLog = events[loc.ID]

	return &loc, nil
}

// FindLocations returns locations with their activity logs. Inactive
// locations are included only when includeInactive is set; the sweeper needs
// them, active listings do not.
func (s *LocationStore) FindLocations(ctx context.Context, includeInactive bool) ([]crowd.Location, error) {
	query := `
		SELECT id, name, capacity, is_active, assigned_organizers, last_updated, created_at
		FROM locations
	`
	if !includeInactive {
		query += " WHERE is_active"
	}
	query += " ORDER BY name"

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying locations: %w", err)
	}
	defer rows.Close()

	var locations []crowd.Location
	var ids []string
	for rows.Next() {
		var loc crowd.Location
		err := rows.Scan(
			&loc.ID,
			&loc.Name,
			&loc.Capacity,
			&loc.IsActive,
			&loc.AssignedOrganizers,
			&loc.LastUpdated,
			&loc.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning location: %w", err)
		}

		locations = append(locations, loc)
		ids = append(ids, loc.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}

	if len(locations) == 0 {
		return locations, nil
	}

	events, err := s.loadEvents(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range locations {
		locations[i].ActivityLog = events[locations[i].ID]
	}

	return locations, nil
}

// UpdateLocation saves updated location details
func (s *LocationStore) UpdateLocation(ctx context.Context, loc crowd.Location) error {
	query := `
		UPDATE locations
		SET name = $2, capacity = $3, is_active = $4, assigned_organizers = $5, last_updated = $6
		WHERE id = $1
	`

	tag, err := s.db.Exec(
		ctx,
		query,
		loc.ID,
		loc.Name,
		loc.Capacity,
		loc.IsActive,
		loc.AssignedOrganizers,
		loc.LastUpdated,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return crowd.ErrDuplicateName
		}
		return fmt.Errorf("error updating location: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return crowd.ErrNotFound
	}

	return nil
}

// AppendEvent atomically appends one activity event and bumps the
// location's last_updated as a single logical mutation.
func (s *LocationStore) AppendEvent(ctx context.Context, locationID string, e crowd.Event) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(
		ctx,
		`UPDATE locations SET last_updated = $2 WHERE id = $1`,
		locationID,
		e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("error updating location timestamp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return crowd.ErrNotFound
	}

	_, err = tx.Exec(
		ctx,
		`INSERT INTO location_events (location_id, crowd_level, reporter_id, recorded_at) VALUES ($1, $2, $3, $4)`,
		locationID,
		string(e.CrowdLevel),
		e.ReporterID,
		e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("error inserting event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing event: %w", err)
	}

	return nil
}

// PruneEvents deletes events recorded before the cutoff and returns the
// number removed. The predicate delete never touches rows appended after
// the sweep started.
func (s *LocationStore) PruneEvents(ctx context.Context, locationID string, cutoff time.Time) (int, error) {
	tag, err := s.db.Exec(
		ctx,
		`DELETE FROM location_events WHERE location_id = $1 AND recorded_at <= $2`,
		locationID,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("error pruning events: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// loadEvents fetches activity logs for the given locations in arrival order
func (s *LocationStore) loadEvents(ctx context.Context, locationIDs []string) (map[string]crowd.ActivityLog, error) {
	query := `
		SELECT location_id, crowd_level, reporter_id, recorded_at
		FROM location_events
		WHERE location_id = ANY($1)
		ORDER BY seq
	`

	rows, err := s.db.Query(ctx, query, locationIDs)
	if err != nil {
		return nil, fmt.Errorf("error querying events: %w", err)
	}
	defer rows.Close()

	logs := make(map[string]crowd.ActivityLog, len(locationIDs))
	for rows.Next() {
		var locationID, level string
		var e crowd.Event

		if err := rows.Scan(&locationID, &level, &e.ReporterID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("error scanning event: %w", err)
		}

		e.CrowdLevel = crowd.Level(level)
		logs[locationID] = append(logs[locationID], e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return logs, nil
}
