// Package geo provides the distance and coordinate math used by property
// discovery. All distances in this codebase are great-circle miles produced
// by DistanceMiles; no alternate projection is used anywhere, so that
// distance-derived damage probabilities stay mutually consistent.
package geo

import (
	"math"
	"math/rand"
	"strings"
)

const (
	// earthRadiusMiles is the Earth radius used by the haversine formula.
	earthRadiusMiles = 3959.0

	// milesPerLatDegree is the equirectangular approximation used for
	// bounding boxes and sampling offsets. One degree of latitude is about
	// 69 miles; longitude degrees shrink with cos(latitude).
	milesPerLatDegree = 69.0
)

// DistanceMiles returns the great-circle distance between two points.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// RandomPointInRadius returns a point within radiusMiles of the center,
// sampled uniformly by angle and uniformly by radius. This intentionally
// biases toward the center; it seeds reverse-geocoding probes and must not
// be used for anything distance-sensitive.
func RandomPointInRadius(r *rand.Rand, centerLat, centerLon, radiusMiles float64) (float64, float64) {
	angle := r.Float64() * 2 * math.Pi
	dist := r.Float64() * radiusMiles

	lat := centerLat + (dist*math.Cos(angle))/milesPerLatDegree
	lon := centerLon + (dist*math.Sin(angle))/(milesPerLatDegree*math.Cos(toRadians(centerLat)))

	return lat, lon
}

// BoundingBox converts a center point and radius to min/max coordinates using
// the equirectangular approximation. Returned as (south, west, north, east).
func BoundingBox(centerLat, centerLon, radiusMiles float64) (float64, float64, float64, float64) {
	latDelta := radiusMiles / milesPerLatDegree
	lonDelta := radiusMiles / (milesPerLatDegree * math.Cos(toRadians(centerLat)))

	return centerLat - latDelta, centerLon - lonDelta, centerLat + latDelta, centerLon + lonDelta
}

// DedupKey returns the deduplication key for a candidate address. Two
// candidates colliding on this key are treated as the same property.
func DedupKey(streetAddress, zipCode string) string {
	return strings.ToLower(strings.TrimSpace(streetAddress)) + "|" + strings.TrimSpace(zipCode)
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
