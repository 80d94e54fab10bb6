package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/seatsync/library-backend-go/internal/domain/branch"
	"github.com/seatsync/library-backend-go/internal/domain/session"
	"github.com/seatsync/library-backend-go/internal/domain/subject"
	"github.com/seatsync/library-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Geofence rejections carry the measured distance
	var geofenceErr *session.GeofenceError
	if errors.As(err, &geofenceErr) {
		GeofenceViolation(w, geofenceErr)
		return
	}

	switch {
	// Identity / resolution errors
	case errors.Is(err, session.ErrUnauthorized):
		Unauthorized(w, "Unauthorized")
	case errors.Is(err, session.ErrNotFound):
		NotFound(w, "Scanned code does not match a branch or member")
	case errors.Is(err, branch.ErrBranchNotFound):
		NotFound(w, "Branch not found")
	case errors.Is(err, subject.ErrSubjectNotFound):
		NotFound(w, "Member not found")
	case errors.Is(err, subject.ErrSubjectInactive):
		Forbidden(w, "Member is inactive")

	// Session state errors
	case errors.Is(err, session.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in at this branch")
	case errors.Is(err, session.ErrNotCheckedIn):
		Conflict(w, "No open session at this branch")
	case errors.Is(err, session.ErrConflict):
		Conflict(w, "Concurrent scan detected, please try again")
	case errors.Is(err, session.ErrSessionNotFound):
		NotFound(w, "Attendance session not found")

	// Geofence preconditions
	case errors.Is(err, session.ErrLocationRequired):
		BadRequest(w, "Location is required at this branch", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}

// GeofenceViolation reports a rejected transition with the measured
// distance.
func GeofenceViolation(w http.ResponseWriter, err *session.GeofenceError) {
	writeJSON(w, http.StatusBadRequest, Response{
		Success: false,
		Error: &ErrorDetail{
			Code:    "GEOFENCE_VIOLATION",
			Message: err.Reason,
			Details: map[string]string{
				"distance_meters": fmt.Sprintf("%.1f", err.DistanceMeters),
			},
		},
	})
}
