// internal/adapter/storage/report_store.go

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"crowdbalance/internal/domain/report"
)

// ReportStore implements storage for missing-person reports
type ReportStore struct {
	db *pgxpool.Pool
}

// NewReportStore creates a new report store
func NewReportStore(db *pgxpool.Pool) *ReportStore {
	return &ReportStore{
		db: db,
	}
}

// SaveReport inserts or updates a report
func (s *ReportStore) SaveReport(ctx context.Context, r report.MissingReport) error {
	query := `
		INSERT INTO missing_reports (
			id, name, age, gender, image_url, last_seen_location,
			description, reporter_id, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET
			name = $2,
			age = $3,
			gender = $4,
			image_url = $5,
			last_seen_location = $6,
			description = $7,
			status = $9,
			updated_at = $11
	`

	_, err := s.db.Exec(
		ctx,
		query,
		r.ID,
		r.Name,
		r.Age,
		string(r.Gender),
		r.ImageURL,
		r.LastSeenLocation,
		r.Description,
		r.ReporterID,
		string(r.Status),
		r.CreatedAt,
		r.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("error saving report: %w", err)
	}

	return nil
}

// GetReport retrieves a report by ID
func (s *ReportStore) GetReport(ctx context.Context, id string) (*report.MissingReport, error) {
	query := `
		SELECT id, name, age, gender, image_url, last_seen_location,
			description, reporter_id, status, created_at, updated_at
		FROM missing_reports
		WHERE id = $1
	`

	r, err := scanReport(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, report.ErrNotFound
		}
		return nil, fmt.Errorf("error querying report: %w", err)
	}

	return r, nil
}

// FindReports returns reports, optionally filtered by status, newest first
func (s *ReportStore) FindReports(ctx context.Context, status report.Status) ([]report.MissingReport, error) {
	query := `
		SELECT id, name, age, gender, image_url, last_seen_location,
			description, reporter_id, status, created_at, updated_at
		FROM missing_reports
	`

	args := []interface{}{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying reports: %w", err)
	}
	defer rows.Close()

	var reports []report.MissingReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning report: %w", err)
		}
		reports = append(reports, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return reports, nil
}

func scanReport(row pgx.Row) (*report.MissingReport, error) {
	var r report.MissingReport
	var gender, status string

	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Age,
		&gender,
		&r.ImageURL,
		&r.LastSeenLocation,
		&r.Description,
		&r.ReporterID,
		&status,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Gender = report.Gender(gender)
	r.Status = report.Status(status)
	return &r, nil
}
