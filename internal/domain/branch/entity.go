package branch

// Branch is a physical library location. Latitude/Longitude are optional;
// when unset, manual attendance at the branch skips the geofence check.
type Branch struct {
	ID             string
	OrganizationID string
	Name           string
	Address        *string
	QRCode         string
	Latitude       *float64
	Longitude      *float64
	Timezone       string
}

// HasCoordinates reports whether the branch is geofenced.
func (b Branch) HasCoordinates() bool {
	return b.Latitude != nil && b.Longitude != nil
}
