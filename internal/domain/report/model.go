// internal/domain/report/model.go

package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle state of a missing-person report
type Status string

const (
	StatusActive Status = "Active"
	StatusFound  Status = "Found"
	StatusClosed Status = "Closed"
)

// Gender values accepted on report creation
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Common errors
var (
	ErrNotFound   = errors.New("report not found")
	ErrValidation = errors.New("validation failed")
)

// MissingReport is a missing-person report filed by an attendee
type MissingReport struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Age              int       `json:"age"`
	Gender           Gender    `json:"gender"`
	ImageURL         string    `json:"image_url"`
	LastSeenLocation string    `json:"last_seen_location"`
	Description      []string  `json:"description"`
	ReporterID       string    `json:"reporter_id"`
	Status           Status    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Validate checks required fields on a new report
func (r MissingReport) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if r.Age <= 0 {
		return fmt.Errorf("%w: age must be positive", ErrValidation)
	}
	if r.Gender != GenderMale && r.Gender != GenderFemale {
		return fmt.Errorf("%w: gender must be Male or Female", ErrValidation)
	}
	if strings.TrimSpace(r.LastSeenLocation) == "" {
		return fmt.Errorf("%w: last seen location is required", ErrValidation)
	}
	return nil
}

// ParseStatus validates a status token
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusFound, StatusClosed:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: invalid status %q", ErrValidation, s)
	}
}

// Service defines the interface for missing-report management
type Service interface {
	CreateReport(ctx context.Context, r MissingReport) (*MissingReport, error)
	GetReport(ctx context.Context, id string) (*MissingReport, error)
	ListReports(ctx context.Context, status Status) ([]MissingReport, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*MissingReport, error)
}
