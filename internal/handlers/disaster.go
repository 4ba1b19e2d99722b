package handlers

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/relieflink/disaster-response-api/internal/database"
	"github.com/relieflink/disaster-response-api/internal/geo"
	"github.com/relieflink/disaster-response-api/internal/middleware"
	"github.com/relieflink/disaster-response-api/internal/models"
	"github.com/relieflink/disaster-response-api/internal/realtime"
	"github.com/relieflink/disaster-response-api/internal/services"
	"gorm.io/datatypes"
)

type DisasterHandler struct {
	db         *database.DB
	geocoder   *services.GeocodingService
	geospatial *services.GeospatialService
	hub        *realtime.Hub
}

func NewDisasterHandler(db *database.DB, geocoder *services.GeocodingService, hub *realtime.Hub) *DisasterHandler {
	return &DisasterHandler{
		db:         db,
		geocoder:   geocoder,
		geospatial: services.NewGeospatialService(db),
		hub:        hub,
	}
}

func SetupDisasterRoutes(router fiber.Router, db *database.DB, geocoder *services.GeocodingService, hub *realtime.Hub) {
	h := NewDisasterHandler(db, geocoder, hub)

	router.Get("/", h.List)
	router.Get("/nearby", h.Nearby)
	router.Get("/:id", h.Get)
	router.Post("/", middleware.Authenticate(), h.Create)
	router.Put("/:id", middleware.Authenticate(), h.Update)
	router.Delete("/:id", middleware.Authenticate(), middleware.Authorize("admin"), h.Delete)
}

type disasterRequest struct {
	Title        string   `json:"title"`
	LocationName string   `json:"location_name"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
}

func (r *disasterRequest) validate() string {
	if len(r.Title) < 3 || len(r.Title) > 200 {
		return "title must be between 3 and 200 characters"
	}
	if len(r.LocationName) < 2 || len(r.LocationName) > 200 {
		return "location_name must be between 2 and 200 characters"
	}
	if len(r.Description) < 10 || len(r.Description) > 2000 {
		return "description must be between 10 and 2000 characters"
	}
	return ""
}

// List godoc
// @Summary List disasters
// @Tags disasters
// @Produce json
// @Param tag query string false "Filter by tag"
// @Param location query string false "Filter by location name substring"
// @Param owner_id query string false "Filter by owner"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} Envelope
// @Router /api/disasters [get]
func (h *DisasterHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	query := h.db.WithContext(c.UserContext()).
		Model(&models.Disaster{}).
		Order("created_at DESC")

	if tag := c.Query("tag"); tag != "" {
		tagJSON, _ := json.Marshal([]string{tag})
		query = query.Where("tags @> ?", datatypes.JSON(tagJSON))
	}
	if ownerID := c.Query("owner_id"); ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	if location := c.Query("location"); location != "" {
		query = query.Where("location_name ILIKE ?", "%"+location+"%")
	}

	var total int64
	query.Count(&total)

	var disasters []models.Disaster
	if err := query.Offset(offset).Limit(limit).Find(&disasters).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to retrieve disasters")
	}

	return respondDataMeta(c, disasters, fiber.Map{
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// Nearby godoc
// @Summary Find disasters near a point
// @Tags disasters
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius query number false "Radius in km (default 50)"
// @Success 200 {object} Envelope
// @Router /api/disasters/nearby [get]
func (h *DisasterHandler) Nearby(c *fiber.Ctx) error {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		return respondError(c, fiber.StatusBadRequest, "Latitude and longitude are required")
	}
	radius, err := strconv.ParseFloat(c.Query("radius", "50"), 64)
	if err != nil {
		radius = 50
	}

	disasters, err := h.geospatial.FindNearbyDisasters(c.UserContext(), lat, lng, radius)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to retrieve nearby disasters")
	}

	return respondDataMeta(c, disasters, fiber.Map{
		"center": fiber.Map{"lat": lat, "lng": lng},
		"radius": radius,
		"count":  len(disasters),
	})
}

// Get godoc
// @Summary Get a disaster with its reports and resources
// @Tags disasters
// @Produce json
// @Param id path string true "Disaster ID"
// @Success 200 {object} Envelope
// @Router /api/disasters/{id} [get]
func (h *DisasterHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid disaster ID")
	}

	var disaster models.Disaster
	err = h.db.WithContext(c.UserContext()).
		Preload("Reports").
		Preload("Resources").
		First(&disaster, "id = ?", id).Error
	if err != nil {
		return storageError(c, err, "Disaster not found", "Failed to retrieve disaster")
	}

	return respondData(c, disaster)
}

// Create godoc
// @Summary Create a disaster
// @Tags disasters
// @Accept json
// @Produce json
// @Param disaster body disasterRequest true "Disaster"
// @Success 201 {object} Envelope
// @Router /api/disasters [post]
func (h *DisasterHandler) Create(c *fiber.Ctx) error {
	var req disasterRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return respondError(c, fiber.StatusBadRequest, msg)
	}

	user := middleware.CurrentUser(c)

	// Geocoding is best-effort; a disaster without coordinates is still
	// created.
	var locationPoint *string
	if geocoded := h.geocoder.Geocode(c.UserContext(), req.LocationName); geocoded != nil {
		point := geo.FormatPoint(geo.Point{Lat: geocoded.Lat, Lng: geocoded.Lng})
		locationPoint = &point
	}

	auditTrail, _ := json.Marshal([]models.AuditEvent{{
		Action:    "create",
		UserID:    user.ID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Details:   "Disaster record created",
	}})
	tags, _ := json.Marshal(req.Tags)
	if req.Tags == nil {
		tags = []byte("[]")
	}

	disaster := models.Disaster{
		Title:        req.Title,
		LocationName: req.LocationName,
		Location:     locationPoint,
		Description:  req.Description,
		Tags:         datatypes.JSON(tags),
		OwnerID:      user.ID,
		AuditTrail:   datatypes.JSON(auditTrail),
	}

	if err := h.db.WithContext(c.UserContext()).Create(&disaster).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to create disaster")
	}

	h.hub.EmitDisasterUpdate(disaster.ID.String(), realtime.UpdatePayload{
		Type: realtime.ChangeCreate,
		Data: disaster,
	})

	return respondCreated(c, disaster)
}

// Update godoc
// @Summary Update a disaster
// @Tags disasters
// @Accept json
// @Produce json
// @Param id path string true "Disaster ID"
// @Param disaster body disasterRequest true "Disaster"
// @Success 200 {object} Envelope
// @Router /api/disasters/{id} [put]
func (h *DisasterHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid disaster ID")
	}

	var req disasterRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return respondError(c, fiber.StatusBadRequest, msg)
	}

	var existing models.Disaster
	err = h.db.WithContext(c.UserContext()).First(&existing, "id = ?", id).Error
	if err != nil {
		return storageError(c, err, "Disaster not found", "Failed to retrieve disaster")
	}

	user := middleware.CurrentUser(c)
	if existing.OwnerID != user.ID && user.Role != "admin" {
		return respondError(c, fiber.StatusForbidden, "Insufficient permissions")
	}

	// Re-geocode only when the location name actually changed.
	locationPoint := existing.Location
	if req.LocationName != existing.LocationName {
		if geocoded := h.geocoder.Geocode(c.UserContext(), req.LocationName); geocoded != nil {
			point := geo.FormatPoint(geo.Point{Lat: geocoded.Lat, Lng: geocoded.Lng})
			locationPoint = &point
		}
	}

	var trail []models.AuditEvent
	_ = json.Unmarshal(existing.AuditTrail, &trail)
	trail = append(trail, models.AuditEvent{
		Action:    "update",
		UserID:    user.ID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Details:   "Disaster record updated",
	})
	auditTrail, _ := json.Marshal(trail)
	tags, _ := json.Marshal(req.Tags)
	if req.Tags == nil {
		tags = []byte("[]")
	}

	updates := map[string]any{
		"title":         req.Title,
		"location_name": req.LocationName,
		"location":      locationPoint,
		"description":   req.Description,
		"tags":          datatypes.JSON(tags),
		"audit_trail":   datatypes.JSON(auditTrail),
	}

	if err := h.db.WithContext(c.UserContext()).Model(&existing).Updates(updates).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to update disaster")
	}

	h.hub.EmitDisasterUpdate(existing.ID.String(), realtime.UpdatePayload{
		Type: realtime.ChangeUpdate,
		Data: existing,
	})

	return respondData(c, existing)
}

// Delete godoc
// @Summary Delete a disaster
// @Tags disasters
// @Produce json
// @Param id path string true "Disaster ID"
// @Success 200 {object} Envelope
// @Router /api/disasters/{id} [delete]
func (h *DisasterHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid disaster ID")
	}

	result := h.db.WithContext(c.UserContext()).Delete(&models.Disaster{}, "id = ?", id)
	if result.Error != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to delete disaster")
	}
	if result.RowsAffected == 0 {
		return respondError(c, fiber.StatusNotFound, "Disaster not found")
	}

	h.hub.EmitDisasterUpdate(id.String(), realtime.UpdatePayload{
		Type: realtime.ChangeDelete,
		ID:   id.String(),
	})

	return respondMessage(c, "Disaster deleted successfully")
}
