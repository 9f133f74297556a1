package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// errorResponse is the JSON error envelope for every failed request.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("Encoding response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

// writeDomainError maps a core error to its HTTP status and envelope.
func writeDomainError(w http.ResponseWriter, err error) {
	status, code := statusForError(err)
	writeError(w, status, code, err.Error())
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrDuplicateDocument):
		return http.StatusConflict, "duplicate_document"
	case errors.Is(err, domain.ErrIngestInProgress):
		return http.StatusConflict, "ingest_in_progress"
	case errors.Is(err, domain.ErrQueryTimeout):
		return http.StatusGatewayTimeout, "query_timeout"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrGenerationUnavailable),
		errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusServiceUnavailable, "provider_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// decodeJSON reads a request body into dst. Malformed bodies are
// reported as domain.ErrInvalidInput so they map to 400.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %s", domain.ErrInvalidInput, err)
	}
	return nil
}
