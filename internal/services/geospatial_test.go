package services

import (
	"testing"

	"github.com/relieflink/disaster-response-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestRankResourcesByDistance_FiltersByRadius(t *testing.T) {
	candidates := []models.Resource{
		{Name: "near shelter", Location: ptr("POINT(-74.00 40.70)")},
		{Name: "far shelter", Location: ptr("POINT(-74.00 41.70)")}, // ~110km north
	}

	nearby := rankResourcesByDistance(candidates, 40.71, -74.00, 50)

	require.Len(t, nearby, 1)
	assert.Equal(t, "near shelter", nearby[0].Name)
	assert.InDelta(t, 1.1, nearby[0].Distance, 0.1)
}

func TestRankResourcesByDistance_SortedAscending(t *testing.T) {
	candidates := []models.Resource{
		{Name: "c", Location: ptr("POINT(-74.00 40.90)")},
		{Name: "a", Location: ptr("POINT(-74.00 40.71)")},
		{Name: "b", Location: ptr("POINT(-74.00 40.80)")},
	}

	nearby := rankResourcesByDistance(candidates, 40.71, -74.00, 100)

	require.Len(t, nearby, 3)
	assert.Equal(t, "a", nearby[0].Name)
	assert.Equal(t, "b", nearby[1].Name)
	assert.Equal(t, "c", nearby[2].Name)
	assert.True(t, nearby[0].Distance <= nearby[1].Distance)
	assert.True(t, nearby[1].Distance <= nearby[2].Distance)
}

func TestRankResourcesByDistance_SkipsMissingAndMalformed(t *testing.T) {
	candidates := []models.Resource{
		{Name: "no location"},
		{Name: "garbage", Location: ptr("not a point")},
		{Name: "valid", Location: ptr("POINT(-74.00 40.71)")},
	}

	nearby := rankResourcesByDistance(candidates, 40.71, -74.00, 10)

	require.Len(t, nearby, 1)
	assert.Equal(t, "valid", nearby[0].Name)
}

func TestRankResourcesByDistance_RadiusIsInclusive(t *testing.T) {
	center := models.Resource{Name: "at center", Location: ptr("POINT(-74.00 40.71)")}

	nearby := rankResourcesByDistance([]models.Resource{center}, 40.71, -74.00, 0)

	require.Len(t, nearby, 1)
	assert.Zero(t, nearby[0].Distance)
}

func TestRankDisastersByDistance(t *testing.T) {
	candidates := []models.Disaster{
		{Title: "nearby flood", Location: ptr("POINT(-74.00 40.70)")},
		{Title: "distant fire", Location: ptr("POINT(-118.24 34.05)")},
		{Title: "unlocated"},
	}

	nearby := rankDisastersByDistance(candidates, 40.71, -74.00, 50)

	require.Len(t, nearby, 1)
	assert.Equal(t, "nearby flood", nearby[0].Title)
	assert.Greater(t, nearby[0].Distance, 0.0)
}

func TestRankResourcesByDistance_EmptyInput(t *testing.T) {
	assert.Empty(t, rankResourcesByDistance(nil, 40.71, -74.00, 50))
}
