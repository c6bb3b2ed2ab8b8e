// internal/server/handlers/report.go

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"crowdbalance/internal/domain/report"
)

// ReportHandler handles missing-report HTTP requests
type ReportHandler struct {
	service report.Service
}

// NewReportHandler creates a new report handler
func NewReportHandler(service report.Service) *ReportHandler {
	return &ReportHandler{
		service: service,
	}
}

// ListReports returns reports, optionally filtered by status
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	status := report.Status(r.URL.Query().Get("status"))

	reports, err := h.service.ListReports(r.Context(), status)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list reports")
		return
	}

	respondWithJSON(w, http.StatusOK, reports)
}

// CreateReport files a new missing-person report
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req report.MissingReport
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	created, err := h.service.CreateReport(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create report")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// GetReport returns a specific report by ID
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing report ID", nil)
		return
	}

	rep, err := h.service.GetReport(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get report")
		return
	}

	respondWithJSON(w, http.StatusOK, rep)
}

// UpdateReportStatus moves a report through its lifecycle
func (h *ReportHandler) UpdateReportStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing report ID", nil)
		return
	}

	type statusRequest struct {
		Status string `json:"status"`
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rep, err := h.service.UpdateStatus(r.Context(), id, report.Status(req.Status))
	if err != nil {
		respondWithServiceError(w, err, "Failed to update report status")
		return
	}

	respondWithJSON(w, http.StatusOK, rep)
}
