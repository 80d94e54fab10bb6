package branch

// BranchResponse is one branch row in the directory listing. The QR code is
// deliberately omitted; it is printed on-site, not served through the API.
type BranchResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Address   *string  `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Timezone  string   `json:"timezone"`
	Geofenced bool     `json:"geofenced"`
}

// ToResponse maps a branch to its listing row.
func (b Branch) ToResponse() BranchResponse {
	return BranchResponse{
		ID:        b.ID,
		Name:      b.Name,
		Address:   b.Address,
		Latitude:  b.Latitude,
		Longitude: b.Longitude,
		Timezone:  b.Timezone,
		Geofenced: b.HasCoordinates(),
	}
}
