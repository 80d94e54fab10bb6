package session

import (
	"github.com/seatsync/library-backend-go/internal/domain/branch"
	"github.com/seatsync/library-backend-go/internal/domain/session"
	"github.com/seatsync/library-backend-go/internal/pkg/geo"
)

// MaxDistanceMeters is the geofence radius around a branch. Check-in must
// happen within it; check-out must happen outside it (leaving the premises
// is what closes the visit).
const MaxDistanceMeters = 60.0

// checkGeofence gates a manual transition on the caller's reported
// location. Branches without coordinates are not geofenced.
func checkGeofence(b branch.Branch, loc *session.GeoPoint, action string) error {
	if !b.HasCoordinates() {
		return nil
	}
	if loc == nil {
		return session.ErrLocationRequired
	}

	distance := geo.HaversineDistance(loc.Lat, loc.Lng, *b.Latitude, *b.Longitude)

	switch action {
	case session.ActionCheckIn:
		if distance > MaxDistanceMeters {
			return &session.GeofenceError{
				Reason:         "too far from branch to check in",
				DistanceMeters: distance,
			}
		}
	case session.ActionCheckOut:
		if distance <= MaxDistanceMeters {
			return &session.GeofenceError{
				Reason:         "still at branch, check out by leaving the premises",
				DistanceMeters: distance,
			}
		}
	}

	return nil
}
