package services

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/relieflink/disaster-response-api/internal/database"
	"github.com/relieflink/disaster-response-api/internal/geo"
	"github.com/relieflink/disaster-response-api/internal/logger"
	"github.com/relieflink/disaster-response-api/internal/models"
)

// GeospatialService answers nearby queries over the stored point
// geometries. It performs a full scan of the candidate set; the set is
// bounded per disaster/type, so no spatial index is used.
type GeospatialService struct {
	db *database.DB
}

func NewGeospatialService(db *database.DB) *GeospatialService {
	return &GeospatialService{db: db}
}

// NearbyQuery bounds a nearby-resources search.
type NearbyQuery struct {
	Lat        float64
	Lng        float64
	RadiusKm   float64
	Type       string
	DisasterID *uuid.UUID
}

// FindNearbyResources returns resources within RadiusKm of the center,
// ascending by distance, each carrying its computed distance in km.
// Storage errors propagate; there is no fallback for primary data.
func (s *GeospatialService) FindNearbyResources(ctx context.Context, q NearbyQuery) ([]models.Resource, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Resource{}).
		Preload("Disaster").
		Where("location IS NOT NULL")

	if q.Type != "" {
		query = query.Where("type = ?", q.Type)
	}
	if q.DisasterID != nil {
		query = query.Where("disaster_id = ?", *q.DisasterID)
	}

	var candidates []models.Resource
	if err := query.Find(&candidates).Error; err != nil {
		return nil, err
	}

	nearby := rankResourcesByDistance(candidates, q.Lat, q.Lng, q.RadiusKm)

	logger.GetLogger("geospatial").Infof("found %d resources within %.1fkm", len(nearby), q.RadiusKm)
	return nearby, nil
}

// FindNearbyDisasters returns disasters within radiusKm of the center,
// ascending by distance.
func (s *GeospatialService) FindNearbyDisasters(ctx context.Context, lat, lng, radiusKm float64) ([]models.Disaster, error) {
	var candidates []models.Disaster
	err := s.db.WithContext(ctx).
		Model(&models.Disaster{}).
		Where("location IS NOT NULL").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	return rankDisastersByDistance(candidates, lat, lng, radiusKm), nil
}

// rankResourcesByDistance is the pure filter/sort core: parse each stored
// geometry (skipping null or malformed ones), keep records within the
// inclusive radius, stable-sort ascending by distance so ties keep
// retrieval order.
func rankResourcesByDistance(candidates []models.Resource, lat, lng, radiusKm float64) []models.Resource {
	nearby := make([]models.Resource, 0, len(candidates))
	for _, resource := range candidates {
		if resource.Location == nil {
			continue
		}
		point, ok := geo.ParsePoint(*resource.Location)
		if !ok {
			continue
		}

		distance := geo.Haversine(lat, lng, point.Lat, point.Lng)
		if distance > radiusKm {
			continue
		}
		resource.Distance = distance
		nearby = append(nearby, resource)
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].Distance < nearby[j].Distance
	})
	return nearby
}

func rankDisastersByDistance(candidates []models.Disaster, lat, lng, radiusKm float64) []models.Disaster {
	nearby := make([]models.Disaster, 0, len(candidates))
	for _, disaster := range candidates {
		if disaster.Location == nil {
			continue
		}
		point, ok := geo.ParsePoint(*disaster.Location)
		if !ok {
			continue
		}

		distance := geo.Haversine(lat, lng, point.Lat, point.Lng)
		if distance > radiusKm {
			continue
		}
		disaster.Distance = distance
		nearby = append(nearby, disaster)
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].Distance < nearby[j].Distance
	})
	return nearby
}
