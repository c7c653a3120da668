package geo

import "math"

// EarthRadiusMiles is the mean Earth radius used for all distance filters.
const EarthRadiusMiles = 3958.8

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DefaultCenter is UW Tacoma, the center used when no other point is known.
var DefaultCenter = Point{Lat: 47.2529, Lng: -122.4443}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceMiles returns the great-circle (haversine) distance between a and b.
func DistanceMiles(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLng/2), 2)
	// Rounding can push h past 1 for antipodal points.
	h = math.Min(1, h)
	return 2 * EarthRadiusMiles * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Valid reports whether p holds finite coordinates.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lng) && !math.IsInf(p.Lng, 0)
}
