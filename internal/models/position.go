package models

import (
	"time"

	"github.com/jorgecardleitao/private-jets/internal/geo"
)

// Position is one decoded ADS-B sample of one aircraft.
// A nil Altitude means the aircraft was on the ground: the upstream source
// reports either a barometric altitude in feet or the literal "ground".
type Position struct {
	Time     time.Time `json:"datetime"`
	Lat      float64   `json:"latitude"`
	Lon      float64   `json:"longitude"`
	Altitude *float64  `json:"altitude,omitempty"`
}

// Grounded reports whether the sample was taken on the ground.
func (p Position) Grounded() bool {
	return p.Altitude == nil
}

// Flying reports whether the sample was taken airborne.
func (p Position) Flying() bool {
	return p.Altitude != nil
}

// AltitudeFt returns the barometric altitude in feet, 0 when grounded.
func (p Position) AltitudeFt() float64 {
	if p.Altitude == nil {
		return 0
	}
	return *p.Altitude
}

// Coord returns the sample's geographic point.
func (p Position) Coord() geo.Coord {
	return geo.Coord{Lat: p.Lat, Lon: p.Lon}
}

// Distance returns the great-circle distance to another position in km.
func (p Position) Distance(other Position) float64 {
	return geo.Distance(p.Coord(), other.Coord())
}
