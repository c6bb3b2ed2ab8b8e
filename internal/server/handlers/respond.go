// internal/server/handlers/respond.go

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"crowdbalance/internal/domain/crowd"
	"crowdbalance/internal/domain/report"
)

// respondWithJSON writes a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError writes a JSON error response
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	response := map[string]string{"error": message}

	if err != nil && code >= 500 {
		log.Printf("HTTP %d: %s: %v", code, message, err)
	}

	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}

// respondWithServiceError maps domain errors to HTTP status codes
func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, crowd.ErrNotFound), errors.Is(err, report.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, crowd.ErrInvalidLevel),
		errors.Is(err, crowd.ErrValidation),
		errors.Is(err, report.ErrValidation):
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, crowd.ErrDuplicateName):
		respondWithError(w, http.StatusConflict, err.Error(), nil)
	default:
		respondWithError(w, http.StatusInternalServerError, fallback, err)
	}
}
