// Package response centralizes HTTP response shapes and helpers.
// Handlers rely on it to keep controllers thin and uniform.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/soccer-scout-service/internal/repository"
	"github.com/maxviazov/soccer-scout-service/internal/service"
	"github.com/maxviazov/soccer-scout-service/internal/store"
)

// ErrNotFound marks requests for routes or resources that do not exist.
var ErrNotFound = errors.New("not found")

// ErrorPayload is the canonical error envelope returned by the API. Query
// errors also carry the payload fields so the frontend can render them.
type ErrorPayload struct {
	Error       string               `json:"error"`
	Message     string               `json:"message,omitempty"`
	FieldErrors []service.FieldError `json:"field_errors,omitempty"`
	*Payload
}

// MapError converts a domain / infrastructure error into an HTTP status and payload.
// Every error payload embeds a fallback Payload.
func MapError(err error) (int, ErrorPayload) {
	if err == nil {
		return http.StatusOK, ErrorPayload{Error: "ok"}
	}

	if errors.Is(err, service.ErrInvalidInput) {
		fb := Fallback("Please ask a question about players, e.g. 'Find young midfielders'.", nil)
		return http.StatusBadRequest, ErrorPayload{
			Error:       "invalid_input",
			Message:     "one or more fields are invalid",
			FieldErrors: service.FieldErrors(err),
			Payload:     &fb,
		}
	}

	var (
		status      int
		code        string
		text        string
		suggestions []string
	)
	switch {
	case errors.Is(err, service.ErrNotReady), errors.Is(err, store.ErrDataUnavailable):
		status, code = http.StatusServiceUnavailable, "service_unavailable"
		text = "The scouting engine is not ready. Player data could not be loaded."
		suggestions = []string{"Try again in a few moments", "Check that the player data files are available"}
	case errors.Is(err, service.ErrProcessingTimeout):
		status, code = http.StatusRequestTimeout, "processing_timeout"
		text = "The query took too long to process. Please try a simpler request."
		suggestions = []string{
			"Try a more specific query with fewer parameters",
			"Break complex queries into smaller parts",
			"Be more specific about player names or positions",
		}
	case errors.Is(err, ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
		text = "Nothing was found at this address."
	case errors.Is(err, repository.ErrUnavailable), errors.Is(err, repository.ErrSchemaMissing):
		status, code = http.StatusServiceUnavailable, "query_log_unavailable"
		text = "The query log is temporarily unavailable."
	default:
		status, code = http.StatusInternalServerError, "internal_error"
		text = "Analysis could not be completed due to a system error. Please try again."
		suggestions = []string{"Try rephrasing your query"}
	}
	fb := Fallback(text, suggestions)
	ep := ErrorPayload{Error: code, Payload: &fb}
	// Internal details stay in the logs.
	if status != http.StatusInternalServerError {
		ep.Message = err.Error()
	}
	return status, ep
}

// WriteError writes an error response and aborts the context.
func WriteError(c *gin.Context, err error) {
	status, payload := MapError(err)
	c.AbortWithStatusJSON(status, payload)
}

// WriteData writes a successful JSON response.
func WriteData(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}
