// Package geo provides the spherical-distance math used by proximity
// search. A full scan with a bounding-box prefilter is sufficient here;
// nearby lookup is a duplicate-detection aid, not a spatial index.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius.
const EarthRadiusMeters = 6371000.0

// metersPerDegreeLat approximates one degree of latitude.
const metersPerDegreeLat = 111320.0

// Haversine returns the great-circle distance in meters between two
// points on a spherical Earth.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// BoundingBox is a coarse lat/lon rectangle around a center point.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// NewBoundingBox computes the prefilter rectangle for a radius in meters.
// Longitude degrees shrink with latitude; near the poles the box widens
// to the full longitude range.
func NewBoundingBox(lat, lon, radiusMeters float64) BoundingBox {
	dLat := radiusMeters / metersPerDegreeLat
	cosLat := math.Cos(lat * math.Pi / 180)
	dLon := 180.0
	if cosLat > 1e-9 {
		dLon = radiusMeters / (metersPerDegreeLat * cosLat)
	}
	return BoundingBox{
		MinLat: lat - dLat,
		MaxLat: lat + dLat,
		MinLon: lon - dLon,
		MaxLon: lon + dLon,
	}
}
