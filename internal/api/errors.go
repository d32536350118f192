package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// Client-facing messages for the fixed error cases.
const (
	msgInvalidRequest = "Invalid request format"
	msgUnexpected     = "An unexpected error occurred"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return msgUnexpected
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return "Validation failed"
	case errors.Is(err, auth.ErrInvalidToken):
		return "Not authorized"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, domain.ErrUnauthorized):
		return "Not authorized"
	case errors.Is(err, service.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, shared.ErrEmptyBody):
		return msgInvalidRequest
	default:
		return msgUnexpected
	}
}

// HandleAPIError writes the response for err. Validation failures become a
// 422 with per-field messages; everything else becomes an ErrorResponse
// carrying the trace ID. A non-empty message overrides the safe default.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) && !verr.Empty() {
		shared.RespondWithValidationErrors(w, r, verr.Fields)
		return
	}

	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
