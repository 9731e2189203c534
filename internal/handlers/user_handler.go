package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kotoba-lab/learning-service/internal/auth"
	"github.com/kotoba-lab/learning-service/internal/services"
	"github.com/kotoba-lab/learning-service/internal/utils"
	"github.com/kotoba-lab/learning-service/internal/validator"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
	validator   *validator.Validator
}

func NewUserHandler(userService services.UserService, v *validator.Validator, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
		validator:   v,
	}
}

// GetMe mirrors the authenticated identity into the local store and
// returns the profile.
func (h *UserHandler) GetMe(c *gin.Context) {
	session, _ := auth.SessionFromContext(c)

	var avatarURL *string
	if session.AvatarURL != "" {
		avatarURL = &session.AvatarURL
	}

	user, err := h.userService.EnsureUser(c.Request.Context(), session.UserID, session.FullName, session.Email, avatarURL)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe updates the caller's learning preferences.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	session, _ := auth.SessionFromContext(c)

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), session.UserID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers returns the user directory. Admin only.
func (h *UserHandler) ListUsers(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 20)

	resp, err := h.userService.ListUsers(c.Request.Context(), page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateUserStatus changes a user's role or active flag. Admin only.
func (h *UserHandler) UpdateUserStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid id",
			Details: "user id cannot be empty",
		})
		return
	}

	var req services.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating user status", "target_user_id", id)

	user, err := h.userService.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
