// internal/server/handlers/location.go

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"crowdbalance/internal/domain/crowd"
)

// LocationHandler handles location-related HTTP requests
type LocationHandler struct {
	tracker crowd.Tracker
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(tracker crowd.Tracker) *LocationHandler {
	return &LocationHandler{
		tracker: tracker,
	}
}

// ListLocations returns all active locations with derived scores
func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.tracker.ListLocations(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list locations")
		return
	}

	respondWithJSON(w, http.StatusOK, locations)
}

// CreateLocation creates a new location
func (h *LocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	type createLocationRequest struct {
		Name     string `json:"name"`
		Capacity int    `json:"capacity"`
	}

	var req createLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	loc, err := h.tracker.CreateLocation(r.Context(), req.Name, req.Capacity)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create location")
		return
	}

	respondWithJSON(w, http.StatusCreated, loc)
}

// GetLocation returns a specific location with derived scores
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing location ID", nil)
		return
	}

	status, err := h.tracker.GetLocation(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get location")
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

// UpdateLocation updates a location's details
func (h *LocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing location ID", nil)
		return
	}

	var update crowd.LocationUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	loc, err := h.tracker.UpdateLocation(r.Context(), id, update)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update location")
		return
	}

	respondWithJSON(w, http.StatusOK, loc)
}

// DeleteLocation soft-deletes a location
func (h *LocationHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing location ID", nil)
		return
	}

	if err := h.tracker.DeactivateLocation(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete location")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Location deleted successfully"})
}

// RecordCrowdLevel appends a crowd report and returns fresh scores
func (h *LocationHandler) RecordCrowdLevel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing location ID", nil)
		return
	}

	type recordRequest struct {
		CrowdLevel string     `json:"crowd_level"`
		ReporterID string     `json:"reporter_id"`
		Timestamp  *time.Time `json:"timestamp"`
	}

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	at := time.Time{}
	if req.Timestamp != nil {
		at = *req.Timestamp
	}

	score, err := h.tracker.RecordEvent(r.Context(), id, crowd.Level(req.CrowdLevel), req.ReporterID, at)
	if err != nil {
		respondWithServiceError(w, err, "Failed to record crowd level")
		return
	}

	respondWithJSON(w, http.StatusOK, score)
}

// GetScores returns derived scores, optionally for a tighter window
func (h *LocationHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing location ID", nil)
		return
	}

	window, ok := parseWindow(w, r)
	if !ok {
		return
	}

	score, err := h.tracker.GetScores(r.Context(), id, window)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get scores")
		return
	}

	respondWithJSON(w, http.StatusOK, score)
}

// GetActivities returns the recent activity feed for a location
func (h *LocationHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing location ID", nil)
		return
	}

	window, ok := parseWindow(w, r)
	if !ok {
		return
	}

	events, err := h.tracker.ListRecentEvents(r.Context(), id, window)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get activities")
		return
	}

	scores, err := h.tracker.GetScores(r.Context(), id, window)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get activities")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"activities": events,
		"scores":     scores,
	})
}

// GetOrganizers returns the organizers assigned to a location
func (h *LocationHandler) GetOrganizers(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing location ID", nil)
		return
	}

	status, err := h.tracker.GetLocation(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get organizers")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"location_id": status.ID,
		"organizers":  status.AssignedOrganizers,
	})
}

// AssignOrganizers replaces the organizers assigned to a location
func (h *LocationHandler) AssignOrganizers(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing location ID", nil)
		return
	}

	type assignRequest struct {
		Organizers []string `json:"organizers"`
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	loc, err := h.tracker.AssignOrganizers(r.Context(), id, req.Organizers)
	if err != nil {
		respondWithServiceError(w, err, "Failed to assign organizers")
		return
	}

	respondWithJSON(w, http.StatusOK, loc)
}

// parseWindow reads an optional ?window= duration query parameter. Zero
// means the default retention window.
func parseWindow(w http.ResponseWriter, r *http.Request) (time.Duration, bool) {
	windowStr := r.URL.Query().Get("window")
	if windowStr == "" {
		return 0, true
	}

	window, err := time.ParseDuration(windowStr)
	if err != nil || window <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid window duration", err)
		return 0, false
	}

	return window, true
}
