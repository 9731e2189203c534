package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kotoba-lab/learning-service/internal/auth"
	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/repositories"
	"github.com/kotoba-lab/learning-service/internal/services"
	"github.com/kotoba-lab/learning-service/internal/utils"
	"github.com/kotoba-lab/learning-service/internal/validator"
)

type MiniTestHandler struct {
	BaseHandler
	miniTestService services.MiniTestService
	importExport    services.ImportExportService
	validator       *validator.Validator
}

func NewMiniTestHandler(
	miniTestService services.MiniTestService,
	importExport services.ImportExportService,
	v *validator.Validator,
	logger utils.Logger,
) *MiniTestHandler {
	return &MiniTestHandler{
		BaseHandler:     NewBaseHandler(logger),
		miniTestService: miniTestService,
		importExport:    importExport,
		validator:       v,
	}
}

// SubmitMiniTest pre-scores a mini-test attempt and queues it for review.
func (h *MiniTestHandler) SubmitMiniTest(c *gin.Context) {
	session, _ := auth.SessionFromContext(c)

	lessonID := parseIDParam(c, "id")
	if lessonID == 0 {
		return
	}

	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting mini-test", "lesson_id", lessonID)

	result, err := h.miniTestService.Submit(c.Request.Context(), lessonID, &req, session.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// PendingReviews returns the review queue. Admin only.
func (h *MiniTestHandler) PendingReviews(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 20)

	resp, err := h.miniTestService.PendingReviews(c.Request.Context(), page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReviewSubmission records a rater verdict on a pending mini-test. Admin
// only.
func (h *MiniTestHandler) ReviewSubmission(c *gin.Context) {
	session, _ := auth.SessionFromContext(c)

	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Reviewing submission", "submission_id", id)

	result, err := h.miniTestService.Review(c.Request.Context(), id, &req, session.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportSubmissions streams matching submissions as an Excel workbook.
// Admin only.
func (h *MiniTestHandler) ExportSubmissions(c *gin.Context) {
	filters := repositories.SubmissionFilters{}
	if value := c.Query("mode"); value != "" {
		mode := models.SubmissionMode(value)
		filters.Mode = &mode
	}
	if value := c.Query("status"); value != "" {
		status := models.SubmissionStatus(value)
		filters.Status = &status
	}
	if id := parseIntQuery(c, "lesson_id", 0); id > 0 {
		lessonID := uint(id)
		filters.LessonID = &lessonID
	}

	filename := fmt.Sprintf("submissions-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.importExport.ExportSubmissions(c.Request.Context(), filters, c.Writer); err != nil {
		h.LogError(c, err, "Failed to export submissions")
		c.Status(http.StatusInternalServerError)
		return
	}
}
