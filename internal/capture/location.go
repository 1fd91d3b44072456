package capture

import "github.com/pkg/errors"

// ErrLocationDenied is surfaced when the client reports that location access
// was refused or unavailable.
var ErrLocationDenied = errors.New("location access denied")

// Position is a geolocation fix reported by the client. Coordinates are
// recorded with the grant but do not yet influence facility ranking.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
