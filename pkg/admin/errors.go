// Error handling utilities for the admin API.
// This file provides error sanitization to prevent information leakage.

package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/getmockd/mockie/pkg/registry"
	"github.com/getmockd/mockie/pkg/route"
)

// Safe error messages for client responses.
const (
	// ErrMsgStorage is returned when the route store or routes file fails.
	ErrMsgStorage = "Storage error"

	// ErrMsgInternalError is returned for unexpected internal errors.
	ErrMsgInternalError = "An internal error occurred"

	// ErrMsgInvalidJSON is returned for JSON parsing errors.
	ErrMsgInvalidJSON = "Invalid JSON in request body"

	// ErrMsgBodyTooLarge is returned when the request body exceeds MaxBodySize.
	ErrMsgBodyTooLarge = "Request body too large"

	// ErrMsgNoPersister is returned by save when no routes file is configured.
	ErrMsgNoPersister = "No routes file configured"

	// ErrMsgShutdownUnavailable is returned when the server cannot be stopped remotely.
	ErrMsgShutdownUnavailable = "Shutdown is not available"
)

// sanitizeError returns a safe error message for client responses and the
// status code to send it with. Validation failures are reported verbatim;
// everything else is logged server-side and replaced by a generic message.
func sanitizeError(err error, log *slog.Logger, operation string) (int, string) {
	var verr *route.ValidationError
	if errors.As(err, &verr) {
		if log != nil {
			log.Warn("validation failed", "operation", operation, "field", verr.Field, "error", err)
		}
		return http.StatusBadRequest, verr.Message
	}

	if log != nil {
		log.Error("operation failed", "operation", operation, "error", err)
	}
	if registry.IsStorageError(err) {
		return http.StatusInternalServerError, ErrMsgStorage
	}
	return http.StatusInternalServerError, ErrMsgInternalError
}

// sanitizeJSONError returns a safe error message for JSON parsing errors.
func sanitizeJSONError(err error, log *slog.Logger) string {
	if log != nil {
		log.Debug("JSON parsing failed", "error", err)
	}
	return ErrMsgInvalidJSON
}
