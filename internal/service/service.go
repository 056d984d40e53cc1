// Package service orchestrates a query from raw text to a finished outcome.
// Kept lean: validation, coordination and domain error shaping only.
package service

import (
	"context"
	"errors"

	"github.com/maxviazov/soccer-scout-service/internal/model"
	"github.com/maxviazov/soccer-scout-service/internal/repository"
)

var (
	// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
	// Field-level details are retrieved via FieldErrors(err).
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotReady means the player store is not loaded (maps to HTTP 503).
	ErrNotReady = errors.New("service not ready")
	// ErrProcessingTimeout means the query budget ran out (maps to HTTP 408).
	ErrProcessingTimeout = errors.New("query processing timed out")
)

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// InvalidField reports a single invalid field, for callers outside the
// service that validate transport-level input.
func InvalidField(field, message string) error {
	return newInvalidInput([]FieldError{{Field: field, Message: message}})
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	var f interface{ Fields() []FieldError }
	if errors.As(err, &f) && errors.Is(err, ErrInvalidInput) {
		return f.Fields()
	}
	return nil
}

// ScoutService answers natural-language scouting questions.
type ScoutService interface {
	// Query runs the whole pipeline. Empty results and uninterpretable
	// questions are successful outcomes, not errors.
	Query(ctx context.Context, text string) (model.Outcome, error)
	Health(ctx context.Context) model.Health
	Capabilities() model.Capabilities
	RecentQueries(ctx context.Context, page repository.Page) (repository.PageResult[model.QueryLogEntry], error)
}
