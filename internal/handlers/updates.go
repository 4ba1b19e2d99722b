package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/relieflink/disaster-response-api/internal/database"
	"github.com/relieflink/disaster-response-api/internal/models"
	"github.com/relieflink/disaster-response-api/internal/services"
)

type UpdatesHandler struct {
	db      *database.DB
	service *services.UpdatesService
}

func NewUpdatesHandler(db *database.DB, service *services.UpdatesService) *UpdatesHandler {
	return &UpdatesHandler{db: db, service: service}
}

func SetupUpdatesRoutes(router fiber.Router, db *database.DB, service *services.UpdatesService) {
	h := NewUpdatesHandler(db, service)

	router.Get("/", h.General)
	router.Get("/disaster/:disasterID", h.ByDisaster)
}

// General godoc
// @Summary Aggregated official updates, not scoped to a disaster
// @Tags updates
// @Produce json
// @Success 200 {object} Envelope
// @Router /api/updates [get]
func (h *UpdatesHandler) General(c *fiber.Ctx) error {
	updates := h.service.GetOfficialUpdates(c.UserContext(), "")

	return respondDataMeta(c, updates, fiber.Map{
		"count": len(updates),
	})
}

// ByDisaster godoc
// @Summary Official updates for a disaster
// @Tags updates
// @Produce json
// @Param disasterID path string true "Disaster ID"
// @Success 200 {object} Envelope
// @Router /api/updates/disaster/{disasterID} [get]
func (h *UpdatesHandler) ByDisaster(c *fiber.Ctx) error {
	disasterID, err := uuid.Parse(c.Params("disasterID"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid disaster ID")
	}

	var disaster models.Disaster
	err = h.db.WithContext(c.UserContext()).
		Select("id").
		First(&disaster, "id = ?", disasterID).Error
	if err != nil {
		return storageError(c, err, "Disaster not found", "Failed to retrieve disaster")
	}

	updates := h.service.GetOfficialUpdates(c.UserContext(), disasterID.String())

	return respondDataMeta(c, updates, fiber.Map{
		"disaster_id": disasterID,
		"count":       len(updates),
	})
}
