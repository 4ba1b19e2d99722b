package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/relieflink/disaster-response-api/internal/database"
	"github.com/relieflink/disaster-response-api/internal/geo"
	"github.com/relieflink/disaster-response-api/internal/middleware"
	"github.com/relieflink/disaster-response-api/internal/models"
	"github.com/relieflink/disaster-response-api/internal/realtime"
	"github.com/relieflink/disaster-response-api/internal/services"
)

var validResourceTypes = map[string]bool{
	"shelter":  true,
	"hospital": true,
	"food":     true,
	"water":    true,
	"medical":  true,
	"rescue":   true,
}

type ResourceHandler struct {
	db         *database.DB
	geocoder   *services.GeocodingService
	geospatial *services.GeospatialService
	hub        *realtime.Hub
}

func NewResourceHandler(db *database.DB, geocoder *services.GeocodingService, hub *realtime.Hub) *ResourceHandler {
	return &ResourceHandler{
		db:         db,
		geocoder:   geocoder,
		geospatial: services.NewGeospatialService(db),
		hub:        hub,
	}
}

func SetupResourceRoutes(router fiber.Router, db *database.DB, geocoder *services.GeocodingService, hub *realtime.Hub) {
	h := NewResourceHandler(db, geocoder, hub)

	router.Get("/nearby", h.Nearby)
	router.Get("/disaster/:disasterID", h.ListByDisaster)
	router.Post("/", middleware.Authenticate(), h.Create)
	router.Put("/:id", middleware.Authenticate(), h.Update)
	router.Delete("/:id", middleware.Authenticate(), h.Delete)
}

type resourceRequest struct {
	DisasterID   string `json:"disaster_id"`
	Name         string `json:"name"`
	LocationName string `json:"location_name"`
	Type         string `json:"type"`
}

// Nearby godoc
// @Summary Find resources near a point
// @Tags resources
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius query number false "Radius in km (default 10)"
// @Param type query string false "Resource type filter"
// @Success 200 {object} Envelope
// @Router /api/resources/nearby [get]
func (h *ResourceHandler) Nearby(c *fiber.Ctx) error {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		return respondError(c, fiber.StatusBadRequest, "Latitude and longitude are required")
	}
	radius, err := strconv.ParseFloat(c.Query("radius", "10"), 64)
	if err != nil {
		radius = 10
	}

	q := services.NearbyQuery{Lat: lat, Lng: lng, RadiusKm: radius, Type: c.Query("type")}
	resources, err := h.geospatial.FindNearbyResources(c.UserContext(), q)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to retrieve nearby resources")
	}

	return respondDataMeta(c, resources, fiber.Map{
		"center": fiber.Map{"lat": lat, "lng": lng},
		"radius": radius,
		"count":  len(resources),
	})
}

// ListByDisaster godoc
// @Summary List resources for a disaster, optionally filtered by proximity
// @Tags resources
// @Produce json
// @Param disasterID path string true "Disaster ID"
// @Param lat query number false "Latitude for proximity filter"
// @Param lng query number false "Longitude for proximity filter"
// @Param radius query number false "Radius in km (default 10)"
// @Param type query string false "Resource type filter"
// @Success 200 {object} Envelope
// @Router /api/resources/disaster/{disasterID} [get]
func (h *ResourceHandler) ListByDisaster(c *fiber.Ctx) error {
	disasterID, err := uuid.Parse(c.Params("disasterID"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid disaster ID")
	}

	// With coordinates the listing becomes a proximity search scoped to
	// this disaster.
	if c.Query("lat") != "" && c.Query("lng") != "" {
		lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
		lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
		if latErr != nil || lngErr != nil {
			return respondError(c, fiber.StatusBadRequest, "Invalid coordinates")
		}
		radius, err := strconv.ParseFloat(c.Query("radius", "10"), 64)
		if err != nil {
			radius = 10
		}

		q := services.NearbyQuery{
			Lat:        lat,
			Lng:        lng,
			RadiusKm:   radius,
			Type:       c.Query("type"),
			DisasterID: &disasterID,
		}
		resources, err := h.geospatial.FindNearbyResources(c.UserContext(), q)
		if err != nil {
			return respondError(c, fiber.StatusInternalServerError, "Failed to retrieve resources")
		}
		return respondDataMeta(c, resources, fiber.Map{
			"center": fiber.Map{"lat": lat, "lng": lng},
			"radius": radius,
			"count":  len(resources),
		})
	}

	query := h.db.WithContext(c.UserContext()).
		Model(&models.Resource{}).
		Where("disaster_id = ?", disasterID).
		Order("created_at DESC")
	if resourceType := c.Query("type"); resourceType != "" {
		query = query.Where("type = ?", resourceType)
	}

	var resources []models.Resource
	if err := query.Find(&resources).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to retrieve resources")
	}

	return respondDataMeta(c, resources, fiber.Map{"count": len(resources)})
}

// Create godoc
// @Summary Register a resource for a disaster
// @Tags resources
// @Accept json
// @Produce json
// @Param resource body resourceRequest true "Resource"
// @Success 201 {object} Envelope
// @Router /api/resources [post]
func (h *ResourceHandler) Create(c *fiber.Ctx) error {
	var req resourceRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	disasterID, err := uuid.Parse(req.DisasterID)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid disaster ID")
	}
	if req.Name == "" || req.LocationName == "" {
		return respondError(c, fiber.StatusBadRequest, "name and location_name are required")
	}
	if !validResourceTypes[req.Type] {
		return respondError(c, fiber.StatusBadRequest, "Invalid resource type")
	}

	var disaster models.Disaster
	err = h.db.WithContext(c.UserContext()).Select("id").First(&disaster, "id = ?", disasterID).Error
	if err != nil {
		return storageError(c, err, "Disaster not found", "Failed to retrieve disaster")
	}

	var locationPoint *string
	if geocoded := h.geocoder.Geocode(c.UserContext(), req.LocationName); geocoded != nil {
		point := geo.FormatPoint(geo.Point{Lat: geocoded.Lat, Lng: geocoded.Lng})
		locationPoint = &point
	}

	user := middleware.CurrentUser(c)
	resource := models.Resource{
		DisasterID:   disasterID,
		Name:         req.Name,
		LocationName: req.LocationName,
		Location:     locationPoint,
		Type:         req.Type,
		CreatedBy:    user.ID,
	}

	if err := h.db.WithContext(c.UserContext()).Create(&resource).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to create resource")
	}

	h.hub.EmitResourceUpdate(disasterID.String(), realtime.UpdatePayload{
		Type: realtime.ChangeCreate,
		Data: resource,
	})

	return respondCreated(c, resource)
}

// Update godoc
// @Summary Update a resource
// @Tags resources
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param resource body resourceRequest true "Resource"
// @Success 200 {object} Envelope
// @Router /api/resources/{id} [put]
func (h *ResourceHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid resource ID")
	}

	var req resourceRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var resource models.Resource
	err = h.db.WithContext(c.UserContext()).First(&resource, "id = ?", id).Error
	if err != nil {
		return storageError(c, err, "Resource not found", "Failed to retrieve resource")
	}

	user := middleware.CurrentUser(c)
	if resource.CreatedBy != user.ID && user.Role != "admin" {
		return respondError(c, fiber.StatusForbidden, "Insufficient permissions")
	}

	updates := map[string]any{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Type != "" {
		if !validResourceTypes[req.Type] {
			return respondError(c, fiber.StatusBadRequest, "Invalid resource type")
		}
		updates["type"] = req.Type
	}
	if req.LocationName != "" && req.LocationName != resource.LocationName {
		updates["location_name"] = req.LocationName
		if geocoded := h.geocoder.Geocode(c.UserContext(), req.LocationName); geocoded != nil {
			point := geo.FormatPoint(geo.Point{Lat: geocoded.Lat, Lng: geocoded.Lng})
			updates["location"] = &point
		}
	}
	if len(updates) == 0 {
		return respondData(c, resource)
	}

	if err := h.db.WithContext(c.UserContext()).Model(&resource).Updates(updates).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to update resource")
	}

	h.hub.EmitResourceUpdate(resource.DisasterID.String(), realtime.UpdatePayload{
		Type: realtime.ChangeUpdate,
		Data: resource,
	})

	return respondData(c, resource)
}

// Delete godoc
// @Summary Delete a resource
// @Tags resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} Envelope
// @Router /api/resources/{id} [delete]
func (h *ResourceHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid resource ID")
	}

	var resource models.Resource
	err = h.db.WithContext(c.UserContext()).First(&resource, "id = ?", id).Error
	if err != nil {
		return storageError(c, err, "Resource not found", "Failed to retrieve resource")
	}

	user := middleware.CurrentUser(c)
	if resource.CreatedBy != user.ID && user.Role != "admin" {
		return respondError(c, fiber.StatusForbidden, "Insufficient permissions")
	}

	if err := h.db.WithContext(c.UserContext()).Delete(&resource).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to delete resource")
	}

	h.hub.EmitResourceUpdate(resource.DisasterID.String(), realtime.UpdatePayload{
		Type: realtime.ChangeDelete,
		ID:   resource.ID.String(),
	})

	return respondMessage(c, "Resource deleted successfully")
}
