package handlers

import (
	"net/http"
	"strconv"

	"golang-storefront-backend/internal/middleware"
	"golang-storefront-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type AddressHandler struct {
	addressService *services.AddressService
}

func NewAddressHandler(addressService *services.AddressService) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
	}
}

// RegisterRoutes registers the routes for address management
func (h *AddressHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	addresses := router.Group("/addresses")

	// Protected routes
	addresses.Use(authMiddleware.AuthRequired())
	{
		addresses.POST("", h.CreateAddress)
		addresses.GET("", h.GetAddresses)
		addresses.GET("/:id", h.GetAddressByID)
		addresses.PUT("/:id", h.UpdateAddress)
		addresses.DELETE("/:id", h.DeleteAddress)
		addresses.POST("/:id/default", h.SetDefaultAddress)
	}
}

// CreateAddress godoc
// @Summary Create a new address
// @Description Create a new delivery address for the user
// @Tags address
// @Accept json
// @Produce json
// @Param address body services.CreateAddressRequest true "Address data"
// @Success 201 {object} models.Address
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /addresses [post]
func (h *AddressHandler) CreateAddress(c *gin.Context) {
	var req services.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	address, err := h.addressService.CreateAddress(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, "Failed to create address", err)
		return
	}

	c.JSON(http.StatusCreated, address)
}

// GetAddresses godoc
// @Summary Get user addresses
// @Description Get all addresses for the current user, default first
// @Tags address
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} services.AddressListResponse
// @Failure 401 {object} ErrorResponse
// @Router /addresses [get]
func (h *AddressHandler) GetAddresses(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	response, err := h.addressService.GetAddresses(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, "Failed to get addresses", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetAddressByID godoc
// @Summary Get address by ID
// @Tags address
// @Produce json
// @Param id path string true "Address ID"
// @Success 200 {object} models.Address
// @Failure 404 {object} ErrorResponse
// @Router /addresses/{id} [get]
func (h *AddressHandler) GetAddressByID(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	address, err := h.addressService.GetAddressByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, "Address not found", err)
		return
	}

	c.JSON(http.StatusOK, address)
}

// UpdateAddress godoc
// @Summary Update address
// @Tags address
// @Accept json
// @Produce json
// @Param id path string true "Address ID"
// @Param address body services.UpdateAddressRequest true "Updated address data"
// @Success 200 {object} models.Address
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /addresses/{id} [put]
func (h *AddressHandler) UpdateAddress(c *gin.Context) {
	var req services.UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	address, err := h.addressService.UpdateAddress(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		respondError(c, "Failed to update address", err)
		return
	}

	c.JSON(http.StatusOK, address)
}

// DeleteAddress godoc
// @Summary Delete address
// @Tags address
// @Param id path string true "Address ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Router /addresses/{id} [delete]
func (h *AddressHandler) DeleteAddress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.addressService.DeleteAddress(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, "Failed to delete address", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetDefaultAddress godoc
// @Summary Set default address
// @Tags address
// @Produce json
// @Param id path string true "Address ID"
// @Success 200 {object} models.Address
// @Failure 404 {object} ErrorResponse
// @Router /addresses/{id}/default [post]
func (h *AddressHandler) SetDefaultAddress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	address, err := h.addressService.SetDefaultAddress(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, "Failed to set default address", err)
		return
	}

	c.JSON(http.StatusOK, address)
}
