package handlers

import (
	"golang-storefront-backend/internal/middleware"
	"golang-storefront-backend/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxImageSize bounds avatar and store image uploads.
const maxImageSize = 5 << 20

type ProfileHandler struct {
	profileService ProfileServiceInterface
}

func NewProfileHandler(profileService ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	profile := router.Group("/profile", authMiddleware.AuthRequired())
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.POST("/avatar", h.UploadAvatar)
	}
}

// @Summary Get current profile
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Profile
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Failed to get profile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// @Summary Update current profile
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body services.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} models.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, "Failed to update profile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// @Summary Upload avatar
// @Tags profile
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Avatar image"
// @Success 200 {object} models.Profile
// @Router /api/v1/profile/avatar [post]
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		badRequest(c, err)
		return
	}
	if file.Size > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "Image too large",
			Message: "images are limited to 5 MB",
		})
		return
	}

	f, err := file.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()

	profile, err := h.profileService.UploadAvatar(c.Request.Context(), userID, file.Filename, f)
	if err != nil {
		respondError(c, "Failed to upload avatar", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
