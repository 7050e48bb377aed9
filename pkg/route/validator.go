package route

import (
	"encoding/json"
	"fmt"
)

// Status code bounds accepted by Validate.
const (
	MinStatus = 100
	MaxStatus = 599
)

// ValidationError represents a validation failure with context.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// Validate checks that the route can be admitted into a store.
func (r Route) Validate() error {
	if r.Method == "" {
		return &ValidationError{Field: "method", Message: "Method cannot be empty"}
	}
	if r.Path == "" {
		return &ValidationError{Field: "path", Message: "Path cannot be empty"}
	}
	if r.Status < MinStatus || r.Status > MaxStatus {
		return &ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("Status must be between %d and %d", MinStatus, MaxStatus),
		}
	}
	if !json.Valid(r.Response) {
		return &ValidationError{Field: "response", Message: "Response must be valid JSON"}
	}
	return nil
}
