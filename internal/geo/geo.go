// Package geo holds the coordinate primitives shared by the geocoding and
// geospatial services: great-circle distance, the textual POINT encoding
// used by the resources and disasters tables, and cache-key construction.
package geo

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// EarthRadiusKm is the sphere radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Point is a WGS84 latitude/longitude pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

var pointExpr = regexp.MustCompile(`POINT\(([^)]+)\)`)

// Haversine returns the great-circle distance in kilometers between two
// points. Self-distance is exactly zero.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// ValidCoordinate reports whether lat/lng are finite and within range.
func ValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ParsePoint decodes the stored "POINT(lng lat)" encoding. The boolean is
// false for missing, malformed, or out-of-range input; callers skip such
// records rather than failing the batch.
func ParsePoint(s string) (Point, bool) {
	m := pointExpr.FindStringSubmatch(s)
	if m == nil {
		return Point{}, false
	}

	fields := strings.Fields(m[1])
	if len(fields) != 2 {
		return Point{}, false
	}

	lng, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Point{}, false
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Point{}, false
	}

	if !ValidCoordinate(lat, lng) {
		return Point{}, false
	}
	return Point{Lat: lat, Lng: lng}, true
}

// FormatPoint encodes a point in the stored "POINT(lng lat)" form.
func FormatPoint(p Point) string {
	return fmt.Sprintf("POINT(%g %g)", p.Lng, p.Lat)
}

// CacheKey joins a prefix and parameters into a colon-delimited cache key.
func CacheKey(prefix string, params ...string) string {
	return prefix + ":" + strings.Join(params, ":")
}
