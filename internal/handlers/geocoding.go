package handlers

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/relieflink/disaster-response-api/internal/services"
)

type GeocodingHandler struct {
	geocoder *services.GeocodingService
}

func NewGeocodingHandler(geocoder *services.GeocodingService) *GeocodingHandler {
	return &GeocodingHandler{geocoder: geocoder}
}

func SetupGeocodingRoutes(router fiber.Router, geocoder *services.GeocodingService) {
	h := NewGeocodingHandler(geocoder)

	router.Post("/", h.Geocode)
}

type geocodeRequest struct {
	LocationName string `json:"location_name"`
	Text         string `json:"text"`
}

// locationPattern matches a capitalized place name following a locative
// preposition, e.g. "flooding in Lower Manhattan, NYC".
var locationPattern = regexp.MustCompile(`(?:\bin\b|\bat\b|\bnear\b)\s+([A-Z][A-Za-z]*(?:[\s,]+[A-Z][A-Za-z]*)*)`)

// extractLocation pulls a likely place name out of free text. When no
// locative phrase is found the whole text is treated as the location.
func extractLocation(text string) string {
	if match := locationPattern.FindStringSubmatch(text); match != nil {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(text)
}

// Geocode godoc
// @Summary Resolve a location name or free text to coordinates
// @Tags geocoding
// @Accept json
// @Produce json
// @Param request body geocodeRequest true "Location name or free text"
// @Success 200 {object} Envelope
// @Router /api/geocoding [post]
func (h *GeocodingHandler) Geocode(c *fiber.Ctx) error {
	var req geocodeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	locationName := strings.TrimSpace(req.LocationName)
	if locationName == "" && strings.TrimSpace(req.Text) == "" {
		return respondError(c, fiber.StatusBadRequest, "location_name or text is required")
	}
	extracted := false
	if locationName == "" {
		locationName = extractLocation(req.Text)
		extracted = true
	}

	result := h.geocoder.Geocode(c.UserContext(), locationName)
	if result == nil {
		return respondError(c, fiber.StatusNotFound, "Location could not be geocoded")
	}

	return respondDataMeta(c, fiber.Map{
		"location_name":     locationName,
		"lat":               result.Lat,
		"lng":               result.Lng,
		"formatted_address": result.FormattedAddress,
		"source":            result.Source,
	}, fiber.Map{
		"extracted": extracted,
	})
}
