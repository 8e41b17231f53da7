package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"pepperbackend/core"
)

// statusForError maps domain error sentinels onto HTTP status codes. Raw
// provider errors never reach the client - they arrive here already wrapped.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidProvider):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNoPendingFlow), errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrReauthorizationRequired):
		return http.StatusConflict
	case errors.Is(err, core.ErrProviderUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("❌ Failed to encode JSON response: %v", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	writeJSONResponse(w, statusCode, map[string]string{"error": message})
}

func writeServiceError(w http.ResponseWriter, err error, message string) {
	writeErrorResponse(w, message, statusForError(err))
}
