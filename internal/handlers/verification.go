package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/relieflink/disaster-response-api/internal/database"
	"github.com/relieflink/disaster-response-api/internal/middleware"
	"github.com/relieflink/disaster-response-api/internal/models"
	"github.com/relieflink/disaster-response-api/internal/services"
)

type VerificationHandler struct {
	db      *database.DB
	service *services.VerificationService
}

func NewVerificationHandler(db *database.DB, service *services.VerificationService) *VerificationHandler {
	return &VerificationHandler{db: db, service: service}
}

func SetupVerificationRoutes(router fiber.Router, db *database.DB, service *services.VerificationService) {
	h := NewVerificationHandler(db, service)

	router.Post("/disaster/:disasterID/image", middleware.Authenticate(), h.VerifyImage)
	router.Post("/batch", middleware.Authenticate(), middleware.Authorize("contributor"), h.VerifyBatch)
}

type verifyImageRequest struct {
	ImageURL string `json:"image_url"`
	ReportID string `json:"report_id"`
}

type verifyBatchRequest struct {
	Items []verifyImageRequest `json:"items"`
}

// VerifyImage godoc
// @Summary Analyze a report image for a disaster
// @Tags verification
// @Accept json
// @Produce json
// @Param disasterID path string true "Disaster ID"
// @Param request body verifyImageRequest true "Image to verify"
// @Success 200 {object} Envelope
// @Router /api/verification/disaster/{disasterID}/image [post]
func (h *VerificationHandler) VerifyImage(c *fiber.Ctx) error {
	disasterID, err := uuid.Parse(c.Params("disasterID"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid disaster ID")
	}

	var req verifyImageRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.ImageURL == "" {
		return respondError(c, fiber.StatusBadRequest, "image_url is required")
	}

	var disaster models.Disaster
	err = h.db.WithContext(c.UserContext()).
		Select("id").
		First(&disaster, "id = ?", disasterID).Error
	if err != nil {
		return storageError(c, err, "Disaster not found", "Failed to retrieve disaster")
	}

	result := h.service.AnalyzeImage(req.ImageURL)

	// When tied to a report, the verdict is written back to it.
	if req.ReportID != "" {
		reportID, err := uuid.Parse(req.ReportID)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "Invalid report ID")
		}
		err = h.db.WithContext(c.UserContext()).
			Model(&models.Report{}).
			Where("id = ? AND disaster_id = ?", reportID, disasterID).
			Update("verification_status", result.Status).Error
		if err != nil {
			return respondError(c, fiber.StatusInternalServerError, "Failed to update report")
		}
	}

	return respondData(c, result)
}

// VerifyBatch godoc
// @Summary Analyze a batch of report images
// @Tags verification
// @Accept json
// @Produce json
// @Param request body verifyBatchRequest true "Images to verify"
// @Success 200 {object} Envelope
// @Router /api/verification/batch [post]
func (h *VerificationHandler) VerifyBatch(c *fiber.Ctx) error {
	var req verifyBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if len(req.Items) == 0 {
		return respondError(c, fiber.StatusBadRequest, "items is required")
	}

	results := make([]services.VerificationResult, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ImageURL == "" {
			continue
		}
		result := h.service.AnalyzeImage(item.ImageURL)
		results = append(results, result)

		if item.ReportID != "" {
			if reportID, err := uuid.Parse(item.ReportID); err == nil {
				h.db.WithContext(c.UserContext()).
					Model(&models.Report{}).
					Where("id = ?", reportID).
					Update("verification_status", result.Status)
			}
		}
	}

	return respondDataMeta(c, results, fiber.Map{"count": len(results)})
}
