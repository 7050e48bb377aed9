package cli

import "errors"

// Common CLI errors
var (
	ErrInvalidResponse = errors.New("response must be valid JSON")
	ErrMissingPath     = errors.New("path is required")
)

// connectionError wraps an admin client error with usage hints.
func connectionError(err error) error {
	return errors.New(FormatConnectionError(err))
}
