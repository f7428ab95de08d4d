package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kailas-cloud/vecdash/internal/domain"
)

// ErrorCode is the machine-readable error code of an API response.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeInvalidQuery           ErrorCode = "invalid_query"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeSearchFailed           ErrorCode = "search_failed"
	CodeRecordNotFound         ErrorCode = "record_not_found"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorMapping binds a domain sentinel to its HTTP rendering.
type errorMapping struct {
	sentinel error
	status   int
	code     ErrorCode
}

var errorMappings = []errorMapping{
	{domain.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError},
	{domain.ErrRecordNotFound, http.StatusBadGateway, CodeRecordNotFound},
	{domain.ErrSearchFailed, http.StatusBadGateway, CodeSearchFailed},
}

// classifyError returns the status, code and client-safe message for err.
// The JSON API never leaks internals: unknown errors become a generic internal error.
func classifyError(err error) (int, ErrorCode, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			msg := m.sentinel.Error()
			// Validation messages are user input feedback, safe to show verbatim.
			if m.sentinel == domain.ErrInvalidQuery {
				msg = err.Error()
			}
			return m.status, m.code, msg
		}
	}
	return http.StatusInternalServerError, CodeInternalError, "internal error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
