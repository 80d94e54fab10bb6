package session

import (
	"testing"

	"github.com/seatsync/library-backend-go/internal/domain/branch"
	"github.com/seatsync/library-backend-go/internal/domain/session"
	"github.com/stretchr/testify/assert"
)

func geofencedBranch() branch.Branch {
	lat, lng := -6.2000, 106.8000
	return branch.Branch{
		ID:        "br-1",
		Name:      "Central",
		Latitude:  &lat,
		Longitude: &lng,
	}
}

func TestCheckGeofence(t *testing.T) {
	b := geofencedBranch()
	near := &session.GeoPoint{Lat: -6.2003, Lng: 106.8000} // ~33m
	far := &session.GeoPoint{Lat: -6.2100, Lng: 106.8000}  // ~1.1km

	t.Run("branch without coordinates skips the check", func(t *testing.T) {
		assert.NoError(t, checkGeofence(branch.Branch{ID: "br-2"}, nil, session.ActionCheckIn))
	})

	t.Run("location required when branch is geofenced", func(t *testing.T) {
		err := checkGeofence(b, nil, session.ActionCheckIn)
		assert.ErrorIs(t, err, session.ErrLocationRequired)
	})

	t.Run("check-in inside the fence", func(t *testing.T) {
		assert.NoError(t, checkGeofence(b, near, session.ActionCheckIn))
	})

	t.Run("check-in outside the fence", func(t *testing.T) {
		err := checkGeofence(b, far, session.ActionCheckIn)
		var geoErr *session.GeofenceError
		assert.ErrorAs(t, err, &geoErr)
		assert.Greater(t, geoErr.DistanceMeters, MaxDistanceMeters)
	})

	t.Run("check-out outside the fence", func(t *testing.T) {
		assert.NoError(t, checkGeofence(b, far, session.ActionCheckOut))
	})

	t.Run("check-out still inside the fence", func(t *testing.T) {
		err := checkGeofence(b, near, session.ActionCheckOut)
		var geoErr *session.GeofenceError
		assert.ErrorAs(t, err, &geoErr)
		assert.LessOrEqual(t, geoErr.DistanceMeters, MaxDistanceMeters)
	})
}
