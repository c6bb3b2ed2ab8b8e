// internal/service/report/service.go

package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"crowdbalance/internal/domain/report"
)

// ReportStore defines storage for missing-person reports
type ReportStore interface {
	SaveReport(ctx context.Context, r report.MissingReport) error
	GetReport(ctx context.Context, id string) (*report.MissingReport, error)
	FindReports(ctx context.Context, status report.Status) ([]report.MissingReport, error)
}

// Service implements the report.Service interface
type Service struct {
	store ReportStore
	now   func() time.Time
}

// NewService creates a new missing-report service
func NewService(store ReportStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// CreateReport files a new missing-person report in Active status
func (s *Service) CreateReport(ctx context.Context, r report.MissingReport) (*report.MissingReport, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	r.ID = uuid.NewString()
	r.Status = report.StatusActive
	r.CreatedAt = now
	r.UpdatedAt = now

	if err := s.store.SaveReport(ctx, r); err != nil {
		return nil, err
	}

	return &r, nil
}

// GetReport returns a report by ID
func (s *Service) GetReport(ctx context.Context, id string) (*report.MissingReport, error) {
	return s.store.GetReport(ctx, id)
}

// ListReports returns reports, optionally filtered by status
func (s *Service) ListReports(ctx context.Context, status report.Status) ([]report.MissingReport, error) {
	if status != "" {
		if _, err := report.ParseStatus(string(status)); err != nil {
			return nil, err
		}
	}

	return s.store.FindReports(ctx, status)
}

// UpdateStatus moves a report through its lifecycle
func (s *Service) UpdateStatus(ctx context.Context, id string, status report.Status) (*report.MissingReport, error) {
	if _, err := report.ParseStatus(string(status)); err != nil {
		return nil, err
	}

	r, err := s.store.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	r.Status = status
	r.UpdatedAt = s.now()

	if err := s.store.SaveReport(ctx, *r); err != nil {
		return nil, err
	}

	return r, nil
}
