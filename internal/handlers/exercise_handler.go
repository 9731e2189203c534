package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kotoba-lab/learning-service/internal/auth"
	"github.com/kotoba-lab/learning-service/internal/services"
	"github.com/kotoba-lab/learning-service/internal/utils"
	"github.com/kotoba-lab/learning-service/internal/validator"
)

type ExerciseHandler struct {
	BaseHandler
	exerciseService services.ExerciseService
	validator       *validator.Validator
}

func NewExerciseHandler(
	exerciseService services.ExerciseService,
	v *validator.Validator,
	logger utils.Logger,
) *ExerciseHandler {
	return &ExerciseHandler{
		BaseHandler:     NewBaseHandler(logger),
		exerciseService: exerciseService,
		validator:       v,
	}
}

// SubmitExercise grades a timed exercise attempt and returns the final
// score with per-question feedback.
func (h *ExerciseHandler) SubmitExercise(c *gin.Context) {
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

	h.LogRequest(c, "Submitting exercise", "lesson_id", lessonID)

	result, err := h.exerciseService.Submit(c.Request.Context(), lessonID, &req, session.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetSubmission returns one submission. Learners can only read their own.
func (h *ExerciseHandler) GetSubmission(c *gin.Context) {
	session, _ := auth.SessionFromContext(c)

	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	submission, err := h.exerciseService.GetSubmission(c.Request.Context(), id, session.UserID, session.IsAdmin())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

// ListSubmissions returns the caller's submission history.
func (h *ExerciseHandler) ListSubmissions(c *gin.Context) {
	session, _ := auth.SessionFromContext(c)

	var req services.ListSubmissionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.exerciseService.ListSubmissions(c.Request.Context(), &req, session.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetProgress returns the caller's aggregate learning progress.
func (h *ExerciseHandler) GetProgress(c *gin.Context) {
	session, _ := auth.SessionFromContext(c)

	stats, err := h.exerciseService.GetProgress(c.Request.Context(), session.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
