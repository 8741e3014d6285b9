package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/leave-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	message := err.Error()
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	switch apperror.Kind(err) {
	case apperror.ErrValidation:
		BadRequest(w, message, nil)
	case apperror.ErrNotFound:
		NotFound(w, message)
	case apperror.ErrConflict:
		Conflict(w, message)
	case apperror.ErrForbidden:
		Forbidden(w, message)
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
