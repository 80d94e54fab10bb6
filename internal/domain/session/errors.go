package session

import (
	"errors"
	"fmt"
)

// Session domain errors
var (
	// Resolution / identity errors
	ErrNotFound     = errors.New("scanned token does not resolve to a branch or subject")
	ErrUnauthorized = errors.New("caller identity could not be resolved")

	// State-mismatch errors (manual flow with an explicit direction)
	ErrAlreadyCheckedIn = errors.New("an open session already exists at this branch")
	ErrNotCheckedIn     = errors.New("no open session exists at this branch")

	// Geofence
	ErrLocationRequired = errors.New("location is required to check in or out at this branch")

	// Storage
	ErrConflict        = errors.New("concurrent scan detected")
	ErrSessionNotFound = errors.New("attendance session not found")
)

// GeofenceError is returned when a manual transition is rejected by the
// distance check. It carries the measured distance for the caller.
type GeofenceError struct {
	Reason         string
	DistanceMeters float64
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("%s (distance %.1fm)", e.Reason, e.DistanceMeters)
}
