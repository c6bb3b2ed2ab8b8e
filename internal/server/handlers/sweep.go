// internal/server/handlers/sweep.go

package handlers

import (
	"context"
	"net/http"
	"time"

	"crowdbalance/internal/domain/crowd"
)

// SweepRunner runs one expiry pass across all locations
type SweepRunner interface {
	SweepAll(ctx context.Context, retention time.Duration) crowd.SweepReport
}

// SweepHandler exposes a manual sweep trigger for operational use
type SweepHandler struct {
	runner SweepRunner
}

// NewSweepHandler creates a new sweep handler
func NewSweepHandler(runner SweepRunner) *SweepHandler {
	return &SweepHandler{
		runner: runner,
	}
}

// SweepNow runs an immediate sweep, same contract as the scheduled one
func (h *SweepHandler) SweepNow(w http.ResponseWriter, r *http.Request) {
	retention := time.Duration(0)
	if retentionStr := r.URL.Query().Get("retention"); retentionStr != "" {
		parsed, err := time.ParseDuration(retentionStr)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid retention duration", err)
			return
		}
		retention = parsed
	}

	report := h.runner.SweepAll(r.Context(), retention)

	code := http.StatusOK
	if report.Failed > 0 {
		code = http.StatusMultiStatus
	}

	respondWithJSON(w, code, report)
}
