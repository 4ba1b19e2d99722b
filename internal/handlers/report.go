package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/relieflink/disaster-response-api/internal/database"
	"github.com/relieflink/disaster-response-api/internal/middleware"
	"github.com/relieflink/disaster-response-api/internal/models"
)

type ReportHandler struct {
	db *database.DB
}

func NewReportHandler(db *database.DB) *ReportHandler {
	return &ReportHandler{db: db}
}

func SetupReportRoutes(router fiber.Router, db *database.DB) {
	h := NewReportHandler(db)

	router.Get("/disaster/:disasterID", h.ListByDisaster)
	router.Get("/:id", h.Get)
	router.Post("/", middleware.Authenticate(), h.Create)
	router.Put("/:id", middleware.Authenticate(), h.Update)
	router.Delete("/:id", middleware.Authenticate(), h.Delete)
}

type createReportRequest struct {
	DisasterID string  `json:"disaster_id"`
	Content    string  `json:"content"`
	ImageURL   *string `json:"image_url"`
}

type updateReportRequest struct {
	Content            string  `json:"content"`
	ImageURL           *string `json:"image_url"`
	VerificationStatus string  `json:"verification_status"`
}

func validReportContent(content string) bool {
	return len(content) >= 5 && len(content) <= 1000
}

func validVerificationStatus(status string) bool {
	switch status {
	case models.ReportPending, models.ReportVerified, models.ReportRejected:
		return true
	}
	return false
}

// ListByDisaster godoc
// @Summary List reports for a disaster
// @Tags reports
// @Produce json
// @Param disasterID path string true "Disaster ID"
// @Param status query string false "Filter by verification status"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} Envelope
// @Router /api/reports/disaster/{disasterID} [get]
func (h *ReportHandler) ListByDisaster(c *fiber.Ctx) error {
	disasterID, err := uuid.Parse(c.Params("disasterID"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid disaster ID")
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	query := h.db.WithContext(c.UserContext()).
		Model(&models.Report{}).
		Where("disaster_id = ?", disasterID).
		Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		if !validVerificationStatus(status) {
			return respondError(c, fiber.StatusBadRequest, "Invalid verification status")
		}
		query = query.Where("verification_status = ?", status)
	}

	var total int64
	query.Count(&total)

	var reports []models.Report
	if err := query.Offset(offset).Limit(limit).Find(&reports).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to retrieve reports")
	}

	return respondDataMeta(c, reports, fiber.Map{
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// Get godoc
// @Summary Get a report
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} Envelope
// @Router /api/reports/{id} [get]
func (h *ReportHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid report ID")
	}

	var report models.Report
	err = h.db.WithContext(c.UserContext()).First(&report, "id = ?", id).Error
	if err != nil {
		return storageError(c, err, "Report not found", "Failed to retrieve report")
	}

	return respondData(c, report)
}

// Create godoc
// @Summary Submit a report for a disaster
// @Tags reports
// @Accept json
// @Produce json
// @Param report body createReportRequest true "Report"
// @Success 201 {object} Envelope
// @Router /api/reports [post]
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	var req createReportRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	disasterID, err := uuid.Parse(req.DisasterID)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid disaster ID")
	}
	if !validReportContent(req.Content) {
		return respondError(c, fiber.StatusBadRequest, "content must be between 5 and 1000 characters")
	}

	// The parent disaster must exist; a report cannot be orphaned.
	var disaster models.Disaster
	err = h.db.WithContext(c.UserContext()).Select("id").First(&disaster, "id = ?", disasterID).Error
	if err != nil {
		return storageError(c, err, "Disaster not found", "Failed to retrieve disaster")
	}

	user := middleware.CurrentUser(c)
	report := models.Report{
		DisasterID:         disasterID,
		UserID:             user.ID,
		Content:            req.Content,
		ImageURL:           req.ImageURL,
		VerificationStatus: models.ReportPending,
	}

	if err := h.db.WithContext(c.UserContext()).Create(&report).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to create report")
	}

	return respondCreated(c, report)
}

// Update godoc
// @Summary Update a report
// @Tags reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param report body updateReportRequest true "Report"
// @Success 200 {object} Envelope
// @Router /api/reports/{id} [put]
func (h *ReportHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid report ID")
	}

	var req updateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var report models.Report
	err = h.db.WithContext(c.UserContext()).First(&report, "id = ?", id).Error
	if err != nil {
		return storageError(c, err, "Report not found", "Failed to retrieve report")
	}

	user := middleware.CurrentUser(c)
	if report.UserID != user.ID && user.Role != "admin" {
		return respondError(c, fiber.StatusForbidden, "Insufficient permissions")
	}

	updates := map[string]any{}
	if req.Content != "" {
		if !validReportContent(req.Content) {
			return respondError(c, fiber.StatusBadRequest, "content must be between 5 and 1000 characters")
		}
		updates["content"] = req.Content
	}
	if req.ImageURL != nil {
		updates["image_url"] = req.ImageURL
	}
	if req.VerificationStatus != "" {
		// Verification state is a moderation call, never the reporter's.
		if !user.HasRole("contributor") {
			return respondError(c, fiber.StatusForbidden, "Insufficient permissions to change verification status")
		}
		if !validVerificationStatus(req.VerificationStatus) {
			return respondError(c, fiber.StatusBadRequest, "Invalid verification status")
		}
		updates["verification_status"] = req.VerificationStatus
	}
	if len(updates) == 0 {
		return respondData(c, report)
	}

	if err := h.db.WithContext(c.UserContext()).Model(&report).Updates(updates).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to update report")
	}

	return respondData(c, report)
}

// Delete godoc
// @Summary Delete a report
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} Envelope
// @Router /api/reports/{id} [delete]
func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid report ID")
	}

	var report models.Report
	err = h.db.WithContext(c.UserContext()).First(&report, "id = ?", id).Error
	if err != nil {
		return storageError(c, err, "Report not found", "Failed to retrieve report")
	}

	user := middleware.CurrentUser(c)
	if report.UserID != user.ID && user.Role != "admin" {
		return respondError(c, fiber.StatusForbidden, "Insufficient permissions")
	}

	if err := h.db.WithContext(c.UserContext()).Delete(&report).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to delete report")
	}

	return respondMessage(c, "Report deleted successfully")
}
