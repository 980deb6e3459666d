// Package model defines the data contract: entities, id conventions, and the
// typed error taxonomy artifacts are validated against.
package model

import "errors"

// Sentinel errors for the taxonomy in spec §7. Callers use errors.Is/As to
// decide keep/discard/retry/fallback at each pipeline boundary.
var (
	ErrSourceIO            = errors.New("model: source io error")
	ErrSchemaValidation    = errors.New("model: llm output failed schema validation")
	ErrStructuralViolation = errors.New("model: dataset example violates format invariants")
	ErrCoverage            = errors.New("model: coverage requirement not met")
	ErrIntegrity           = errors.New("model: referential integrity violation")
	ErrWriteIO             = errors.New("model: artifact write failed")
	ErrDetectionFailed     = errors.New("model: case/format detection failed")
	ErrUnknownID           = errors.New("model: id does not resolve")
	ErrInvalidID           = errors.New("model: id has wrong prefix or is empty")
)

// ValidationError collects one or more field-level problems found while
// parsing LLM output into a typed entity. It is always wrapped with
// ErrSchemaValidation so callers can use errors.Is uniformly.
type ValidationError struct {
	Entity string
	Issues []string
}

func (e *ValidationError) Error() string {
	msg := "model: " + e.Entity + " invalid"
	for _, issue := range e.Issues {
		msg += "; " + issue
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return ErrSchemaValidation }

// NewValidationError builds a *ValidationError, or returns nil if issues is empty.
func NewValidationError(entity string, issues []string) error {
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Entity: entity, Issues: issues}
}
