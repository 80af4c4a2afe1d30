// Package errors defines the typed failure modes of the analysis pipeline.
//
// Every component validates its preconditions before heavy computation and
// fails fast with one of these types rather than producing silently wrong
// numbers. Partial results are never returned disguised as success.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// SchemaError reports a required column that is missing or has the wrong type.
type SchemaError struct {
	Column string
	Reason string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("schema error: column %q not found", e.Column)
	}
	return fmt.Sprintf("schema error: column %q: %s", e.Column, e.Reason)
}

// NewSchemaError creates a SchemaError for a missing column.
func NewSchemaError(column, reason string) *SchemaError {
	return &SchemaError{Column: column, Reason: reason}
}

// InsufficientDataError reports that too few rows, customers or label classes
// were available for the requested operation.
type InsufficientDataError struct {
	Operation string
	Need      int
	Got       int
	Detail    string
}

// Error implements the error interface
func (e *InsufficientDataError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("insufficient data for %s: %s", e.Operation, e.Detail)
	}
	return fmt.Sprintf("insufficient data for %s: need %d, got %d", e.Operation, e.Need, e.Got)
}

// NewInsufficientData creates an InsufficientDataError with a need/got count.
func NewInsufficientData(operation string, need, got int) *InsufficientDataError {
	return &InsufficientDataError{Operation: operation, Need: need, Got: got}
}

// TrainingError reports a model-training failure such as singular scaling
// when a feature is constant. Feature names the offending feature when it
// is identifiable.
type TrainingError struct {
	Model   string
	Feature string
	Reason  string
}

// Error implements the error interface
func (e *TrainingError) Error() string {
	if e.Feature != "" {
		return fmt.Sprintf("training %s failed: feature %q: %s", e.Model, e.Feature, e.Reason)
	}
	return fmt.Sprintf("training %s failed: %s", e.Model, e.Reason)
}

// IsSchema reports whether err is (or wraps) a SchemaError.
func IsSchema(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// IsInsufficientData reports whether err is (or wraps) an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var ie *InsufficientDataError
	return errors.As(err, &ie)
}

// IsTraining reports whether err is (or wraps) a TrainingError.
func IsTraining(err error) bool {
	var te *TrainingError
	return errors.As(err, &te)
}

// APIError is the JSON shape errors take on the report server.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ToAPIError maps a pipeline error onto its HTTP representation.
func ToAPIError(err error) *APIError {
	switch {
	case IsSchema(err):
		return &APIError{StatusCode: http.StatusBadRequest, ErrorCode: "SCHEMA_ERROR", Message: err.Error()}
	case IsInsufficientData(err):
		return &APIError{StatusCode: http.StatusUnprocessableEntity, ErrorCode: "INSUFFICIENT_DATA", Message: err.Error()}
	case IsTraining(err):
		return &APIError{StatusCode: http.StatusUnprocessableEntity, ErrorCode: "TRAINING_ERROR", Message: err.Error()}
	default:
		return &APIError{StatusCode: http.StatusInternalServerError, ErrorCode: "INTERNAL_ERROR", Message: err.Error()}
	}
}
