package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/moura-tracker/timeclock/internal/domain/auth"
	"github.com/moura-tracker/timeclock/internal/domain/employee"
	"github.com/moura-tracker/timeclock/internal/domain/history"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/backend"
	"github.com/moura-tracker/timeclock/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid email or password")
	case errors.Is(err, auth.ErrTokenRevoked):
		Unauthorized(w, "Token revoked")
	case errors.Is(err, auth.ErrSessionExpired):
		Unauthorized(w, "Session expired, please log in again")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrSessionMissing):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Work period domain errors
	case errors.Is(err, workperiod.ErrNoOpenPeriod):
		NotFound(w, "There is no open shift to close")
	case errors.Is(err, workperiod.ErrPeriodNotFound):
		NotFound(w, "Work period not found")
	case errors.Is(err, workperiod.ErrAlreadyCheckedIn):
		Conflict(w, "A shift is already open")
	case errors.Is(err, workperiod.ErrInvalidReason):
		BadRequest(w, "Invalid checkout reason", nil)
	case errors.Is(err, workperiod.ErrDetailsRequired):
		BadRequest(w, "Details are required when the reason is other", nil)

	// History errors
	case errors.Is(err, history.ErrInvalidDate):
		BadRequest(w, "Date must be in YYYY-MM-DD format", nil)
	case errors.Is(err, history.ErrInvalidMonth):
		BadRequest(w, "Month must be in YYYY-MM format", nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrInvalidDateRange):
		BadRequest(w, "Start date must not be after end date", nil)
	case errors.Is(err, employee.ErrReportRangeTooBig):
		BadRequest(w, "Report range must not exceed 366 days", nil)

	// Backend errors not claimed by a domain
	case errors.Is(err, backend.ErrNotFound):
		NotFound(w, messageOr(err, "Resource not found"))
	case errors.Is(err, backend.ErrConflict):
		Conflict(w, messageOr(err, "Request conflicts with the current state"))
	case errors.Is(err, backend.ErrRejected):
		BadRequest(w, messageOr(err, "Request rejected by the time-tracking service"), nil)
	case errors.Is(err, backend.ErrUnavailable):
		slog.Error("Backend unavailable", "error", err)
		BadGateway(w, "Time-tracking service unavailable")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

func messageOr(err error, fallback string) string {
	if msg := backend.Message(err); msg != "" {
		return msg
	}
	return fallback
}
