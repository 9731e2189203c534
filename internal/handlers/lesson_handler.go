package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kotoba-lab/learning-service/internal/auth"
	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/services"
	"github.com/kotoba-lab/learning-service/internal/utils"
	"github.com/kotoba-lab/learning-service/internal/validator"
)

type LessonHandler struct {
	BaseHandler
	lessonService services.LessonService
	importExport  services.ImportExportService
	validator     *validator.Validator
}

func NewLessonHandler(
	lessonService services.LessonService,
	importExport services.ImportExportService,
	v *validator.Validator,
	logger utils.Logger,
) *LessonHandler {
	return &LessonHandler{
		BaseHandler:   NewBaseHandler(logger),
		lessonService: lessonService,
		importExport:  importExport,
		validator:     v,
	}
}

// ListLessons returns a filtered, paginated lesson list.
func (h *LessonHandler) ListLessons(c *gin.Context) {
	var req services.ListLessonsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.lessonService.List(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListLessonsGrouped returns lessons bucketed by JLPT level.
func (h *LessonHandler) ListLessonsGrouped(c *gin.Context) {
	var kind *models.LessonKind
	if value := c.Query("kind"); value != "" {
		k := models.LessonKind(value)
		kind = &k
	}

	groups, err := h.lessonService.ListGroupedByLevel(c.Request.Context(), kind)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// GetLesson returns one lesson with its words and learner-facing questions.
func (h *LessonHandler) GetLesson(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	lesson, err := h.lessonService.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

// GetLessonStats returns submission statistics for one lesson.
func (h *LessonHandler) GetLessonStats(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	stats, err := h.lessonService.GetStats(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CreateLesson creates a lesson. Admin only.
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	session, _ := auth.SessionFromContext(c)

	var req services.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating lesson", "kind", req.Kind, "level", req.Level)

	lesson, err := h.lessonService.Create(c.Request.Context(), &req, session.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

// UpdateLesson updates lesson metadata. Admin only.
func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	lesson, err := h.lessonService.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

// DeleteLesson removes a lesson. Admin only.
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.lessonService.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Lesson deleted"})
}

// AddWord adds one vocabulary entry to a lesson. Admin only.
func (h *LessonHandler) AddWord(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.CreateWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	word, err := h.lessonService.AddWord(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, word)
}

// AddQuestion adds one question to a lesson. Admin only.
func (h *LessonHandler) AddQuestion(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	question, err := h.lessonService.AddQuestion(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// ImportWords bulk-loads vocabulary from an uploaded spreadsheet. Admin
// only.
func (h *LessonHandler) ImportWords(c *gin.Context) {
	h.importSheet(c, h.importExport.ImportWords)
}

// ImportQuestions bulk-loads questions from an uploaded spreadsheet. Admin
// only.
func (h *LessonHandler) ImportQuestions(c *gin.Context) {
	h.importSheet(c, h.importExport.ImportQuestions)
}

func (h *LessonHandler) importSheet(c *gin.Context, importFn func(ctx context.Context, lessonID uint, r io.Reader) (*models.ImportSummary, error)) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing lesson content", "lesson_id", id, "filename", header.Filename)

	summary, err := importFn(c.Request.Context(), id, file)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
