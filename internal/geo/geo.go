package geo

import "math"

const (
	degreesToRadians = math.Pi / 180.0

	// EarthRadiusKm is the Earth radius used by every great-circle
	// computation in the datasets. Changing it changes published numbers.
	EarthRadiusKm = 6372.8
)

// Coord is a WGS84 point in decimal degrees.
type Coord struct {
	Lat float64
	Lon float64
}

// Distance returns the great-circle distance between two points in km,
// computed with the haversine formula.
func Distance(from, to Coord) float64 {
	lat1 := from.Lat * degreesToRadians
	lon1 := from.Lon * degreesToRadians
	lat2 := to.Lat * degreesToRadians
	lon2 := to.Lon * degreesToRadians

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}
