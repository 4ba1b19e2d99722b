package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversine_SamePoint(t *testing.T) {
	assert.Zero(t, Haversine(40.7128, -74.0060, 40.7128, -74.0060))
}

func TestHaversine_KnownDistance(t *testing.T) {
	// NYC to Philadelphia, roughly 130km
	d := Haversine(40.7128, -74.0060, 39.9526, -75.1652)
	assert.InDelta(t, 130, d, 5)
}

func TestHaversine_OneDegreeLatitude(t *testing.T) {
	// One degree of latitude is about 111km everywhere
	d := Haversine(40.70, -74.00, 41.70, -74.00)
	assert.InDelta(t, 111, d, 1)
}

func TestValidCoordinate(t *testing.T) {
	assert.True(t, ValidCoordinate(40.7128, -74.0060))
	assert.True(t, ValidCoordinate(-90, 180))
	assert.False(t, ValidCoordinate(90.1, 0))
	assert.False(t, ValidCoordinate(0, -180.5))
}

func TestParsePoint(t *testing.T) {
	point, ok := ParsePoint("POINT(-74.006 40.7128)")
	require.True(t, ok)
	assert.InDelta(t, 40.7128, point.Lat, 1e-9)
	assert.InDelta(t, -74.006, point.Lng, 1e-9)
}

func TestParsePoint_Malformed(t *testing.T) {
	cases := []string{
		"",
		"POINT()",
		"POINT(-74.006)",
		"POINT(abc def)",
		"40.7128,-74.006",
		"POINT(-200 95)", // out of range
	}
	for _, input := range cases {
		_, ok := ParsePoint(input)
		assert.False(t, ok, "input %q should not parse", input)
	}
}

func TestFormatPoint_RoundTrip(t *testing.T) {
	original := Point{Lat: 40.7128, Lng: -74.006}
	parsed, ok := ParsePoint(FormatPoint(original))
	require.True(t, ok)
	assert.InDelta(t, original.Lat, parsed.Lat, 1e-9)
	assert.InDelta(t, original.Lng, parsed.Lng, 1e-9)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "geocode:Manhattan", CacheKey("geocode", "Manhattan"))
	assert.Equal(t, "social_media:flood,rescue:global", CacheKey("social_media", "flood,rescue", "global"))
}
