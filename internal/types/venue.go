package types

// Location is a WGS84 coordinate pair used to anchor nearby-place searches.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IsZero reports whether no coordinate has been set.
func (l Location) IsZero() bool {
	return l.Latitude == 0 && l.Longitude == 0
}

// VenueCandidate is a place record retrieved from an external catalog or
// search provider, used as raw material for plan generation.
type VenueCandidate struct {
	Name        string   `json:"name"`
	Category    string   `json:"category,omitempty"`
	Address     string   `json:"address,omitempty"`
	Description string   `json:"description,omitempty"`
	Location    Location `json:"location,omitempty"`
	Telephone   string   `json:"telephone,omitempty"`
}
