package handlers

import (
	"golang-storefront-backend/internal/middleware"
	"golang-storefront-backend/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService AuthServiceInterface
}

func NewAuthHandler(authService AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the session routes
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", h.SignUp)
		authGroup.POST("/signin", h.SignIn)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/signout", authMiddleware.AuthRequired(), h.SignOut)
	}
}

// @Summary Sign up
// @Description Create an account and its profile
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.SignUpRequest true "Sign up request"
// @Success 201 {object} services.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req services.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	response, err := h.authService.SignUp(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Sign up failed", err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// @Summary Sign in
// @Description Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.SignInRequest true "Sign in request"
// @Success 200 {object} services.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req services.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	response, err := h.authService.SignIn(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Sign in failed", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} services.AuthResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	response, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, "Refresh failed", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Sign out
// @Description Invalidate the refresh token and discard the session cart
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Router /api/v1/auth/signout [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.authService.SignOut(c.Request.Context(), userID); err != nil {
		respondError(c, "Sign out failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}
