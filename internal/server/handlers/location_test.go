// internal/server/handlers/location_test.go

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdbalance/internal/adapter/storage"
	"crowdbalance/internal/domain/crowd"
	crowdService "crowdbalance/internal/service/crowd"
)

func newTestRouter(t *testing.T) (*chi.Mux, *storage.MemoryLocationStore) {
	t.Helper()

	store := storage.NewMemoryLocationStore()
	tracker := crowdService.NewTracker(store, nil, crowdService.TrackerConfig{})
	sweeper := crowdService.NewSweeper(store, crowdService.SweeperConfig{})

	locationHandler := NewLocationHandler(tracker)
	sweepHandler := NewSweepHandler(sweeper)

	router := chi.NewRouter()
	router.Route("/locations", func(r chi.Router) {
		r.Get("/", locationHandler.ListLocations)
		r.Post("/", locationHandler.CreateLocation)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", locationHandler.GetLocation)
			r.Put("/", locationHandler.UpdateLocation)
			r.Delete("/", locationHandler.DeleteLocation)
			r.Patch("/crowd", locationHandler.RecordCrowdLevel)
			r.Get("/scores", locationHandler.GetScores)
			r.Get("/activities", locationHandler.GetActivities)
			r.Get("/organizers", locationHandler.GetOrganizers)
			r.Put("/organizers", locationHandler.AssignOrganizers)
		})
	})
	router.Post("/admin/sweep", sweepHandler.SweepNow)

	return router, store
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createTestLocation(t *testing.T, router http.Handler, name string) crowd.Location {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/locations", map[string]interface{}{
		"name":     name,
		"capacity": 100,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var loc crowd.Location
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loc))
	return loc
}

func TestCreateLocationEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	loc := createTestLocation(t, router, "Main Gate")
	assert.NotEmpty(t, loc.ID)
	assert.True(t, loc.IsActive)

	rec := doJSON(t, router, http.MethodPost, "/locations", map[string]interface{}{
		"name":     "Main Gate",
		"capacity": 50,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/locations", map[string]interface{}{
		"name":     "No Capacity",
		"capacity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordCrowdLevelEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	loc := createTestLocation(t, router, "Main Stage")

	rec := doJSON(t, router, http.MethodPatch, "/locations/"+loc.ID+"/crowd", map[string]string{
		"crowd_level": "max",
		"reporter_id": "org-1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var score crowd.Score
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &score))
	assert.Equal(t, 1, score.Total)
	assert.Equal(t, "max", score.Dominant)
	assert.Equal(t, 100, score.Percentage)

	rec = doJSON(t, router, http.MethodPatch, "/locations/"+loc.ID+"/crowd", map[string]string{
		"crowd_level": "packed",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/locations/missing/crowd", map[string]string{
		"crowd_level": "max",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetScoresEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	loc := createTestLocation(t, router, "East Hall")

	for _, level := range []string{"min", "min", "moderate"} {
		rec := doJSON(t, router, http.MethodPatch, "/locations/"+loc.ID+"/crowd", map[string]string{
			"crowd_level": level,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/locations/"+loc.ID+"/scores", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var score crowd.Score
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &score))
	assert.Equal(t, crowd.Counts{Min: 2, Moderate: 1}, score.Counts)
	assert.Equal(t, "min", score.Dominant)

	rec = doJSON(t, router, http.MethodGet, "/locations/"+loc.ID+"/scores?window=banana", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteLocationIsSoft(t *testing.T) {
	router, _ := newTestRouter(t)
	loc := createTestLocation(t, router, "Closing Hall")

	rec := doJSON(t, router, http.MethodDelete, "/locations/"+loc.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Excluded from the active listing
	rec = doJSON(t, router, http.MethodGet, "/locations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []crowd.LocationStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Empty(t, listed)

	// Still readable directly
	rec = doJSON(t, router, http.MethodGet, "/locations/"+loc.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestOrganizerEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	loc := createTestLocation(t, router, "West Hall")

	rec := doJSON(t, router, http.MethodPut, "/locations/"+loc.ID+"/organizers", map[string]interface{}{
		"organizers": []string{"org-1", "org-2"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/locations/"+loc.ID+"/organizers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		LocationID string   `json:"location_id"`
		Organizers []string `json:"organizers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, loc.ID, resp.LocationID)
	assert.Equal(t, []string{"org-1", "org-2"}, resp.Organizers)
}

func TestSweepEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	loc := createTestLocation(t, router, "Main Gate")

	rec := doJSON(t, router, http.MethodPatch, "/locations/"+loc.ID+"/crowd", map[string]string{
		"crowd_level": "max",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Fresh events survive a sweep
	rec = doJSON(t, router, http.MethodPost, "/admin/sweep", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report crowd.SweepReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Swept)
	assert.Equal(t, 0, report.Removed)
	assert.Equal(t, 0, report.Failed)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/admin/sweep?retention=%s", "bogus"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetActivitiesEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	loc := createTestLocation(t, router, "North Gate")

	for _, level := range []string{"max", "moderate"} {
		rec := doJSON(t, router, http.MethodPatch, "/locations/"+loc.ID+"/crowd", map[string]string{
			"crowd_level": level,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/locations/"+loc.ID+"/activities", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Activities []crowd.Event `json:"activities"`
		Scores     crowd.Score   `json:"scores"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Activities, 2)
	assert.Equal(t, 2, resp.Scores.Total)
}
