package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/relieflink/disaster-response-api/internal/database"
	"github.com/relieflink/disaster-response-api/internal/models"
	"github.com/relieflink/disaster-response-api/internal/realtime"
	"github.com/relieflink/disaster-response-api/internal/services"
	"github.com/relieflink/disaster-response-api/pkg/social"
)

// defaultKeywords seed the disaster feed when the caller supplies none.
var defaultKeywords = []string{"disaster", "emergency", "help"}

type SocialMediaHandler struct {
	db      *database.DB
	service *services.SocialMediaService
	hub     *realtime.Hub
}

func NewSocialMediaHandler(db *database.DB, service *services.SocialMediaService, hub *realtime.Hub) *SocialMediaHandler {
	return &SocialMediaHandler{db: db, service: service, hub: hub}
}

func SetupSocialMediaRoutes(router fiber.Router, db *database.DB, service *services.SocialMediaService, hub *realtime.Hub) {
	h := NewSocialMediaHandler(db, service, hub)

	router.Get("/disaster/:disasterID", h.DisasterFeed)
	router.Get("/search", h.Search)
	router.Get("/mock", h.Mock)
}

func parseKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}

func urgentCount(posts []social.Post) int {
	count := 0
	for _, post := range posts {
		if post.Priority == services.PriorityUrgent {
			count++
		}
	}
	return count
}

// DisasterFeed godoc
// @Summary Prioritized social-media feed for a disaster
// @Tags social-media
// @Produce json
// @Param disasterID path string true "Disaster ID"
// @Param keywords query string false "Comma-separated keywords"
// @Success 200 {object} Envelope
// @Router /api/social-media/disaster/{disasterID} [get]
func (h *SocialMediaHandler) DisasterFeed(c *fiber.Ctx) error {
	disasterID, err := uuid.Parse(c.Params("disasterID"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid disaster ID")
	}

	var disaster models.Disaster
	err = h.db.WithContext(c.UserContext()).
		Select("id", "location_name").
		First(&disaster, "id = ?", disasterID).Error
	if err != nil {
		return storageError(c, err, "Disaster not found", "Failed to retrieve disaster")
	}

	keywords := parseKeywords(c.Query("keywords"))
	if len(keywords) == 0 {
		keywords = defaultKeywords
	}

	posts := h.service.SearchPosts(c.UserContext(), keywords, disaster.LocationName)

	// Push the freshest slice of the feed to subscribers of this disaster.
	fresh := posts
	if len(fresh) > 5 {
		fresh = fresh[:5]
	}
	h.hub.EmitSocialMediaUpdate(disasterID.String(), realtime.UpdatePayload{
		Type: realtime.ChangeUpdate,
		Data: fresh,
	})

	return respondDataMeta(c, posts, fiber.Map{
		"disaster_id":  disasterID,
		"keywords":     keywords,
		"count":        len(posts),
		"urgent_count": urgentCount(posts),
	})
}

// Mock godoc
// @Summary Raw mock feed for local development
// @Tags social-media
// @Produce json
// @Param keywords query string false "Comma-separated keywords"
// @Param location query string false "Location context"
// @Success 200 {object} Envelope
// @Router /api/social-media/mock [get]
func (h *SocialMediaHandler) Mock(c *fiber.Ctx) error {
	provider := services.NewMockPostProvider(nil)
	posts, _ := provider.Search(c.UserContext(), parseKeywords(c.Query("keywords")), c.Query("location"))

	for i := range posts {
		posts[i].Priority = services.ClassifyPriority(posts[i].Content)
	}

	return respondDataMeta(c, posts, fiber.Map{
		"count": len(posts),
		"mock":  true,
	})
}

// Search godoc
// @Summary Search social-media posts by keyword
// @Tags social-media
// @Produce json
// @Param keywords query string true "Comma-separated keywords"
// @Param location query string false "Location context"
// @Success 200 {object} Envelope
// @Router /api/social-media/search [get]
func (h *SocialMediaHandler) Search(c *fiber.Ctx) error {
	keywords := parseKeywords(c.Query("keywords"))
	if len(keywords) == 0 {
		return respondError(c, fiber.StatusBadRequest, "keywords query parameter is required")
	}

	posts := h.service.SearchPosts(c.UserContext(), keywords, c.Query("location"))

	return respondDataMeta(c, posts, fiber.Map{
		"keywords":     keywords,
		"count":        len(posts),
		"urgent_count": urgentCount(posts),
	})
}
