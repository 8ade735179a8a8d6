package handlers

import (
	"net/http"

	"golang-storefront-backend/internal/middleware"
	"golang-storefront-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService CatalogServiceInterface
}

func NewCatalogHandler(catalogService CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// RegisterRoutes registers the routes for products and services
func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	offers := router.Group("/offers")
	{
		offers.GET("", h.ListOffers)
		offers.GET("/:id", h.GetOffer)
		offers.PUT("/:id", authMiddleware.AuthRequired(), authMiddleware.MerchantRequired(), h.UpdateOffer)
	}

	router.GET("/stores/:id/offers", h.ListStoreOffers)
	router.POST("/stores/:id/offers", authMiddleware.AuthRequired(), authMiddleware.MerchantRequired(), h.CreateOffer)
	router.GET("/stores/:id/offers/manage", authMiddleware.AuthRequired(), authMiddleware.MerchantRequired(), h.ListOwnerOffers)
}

// ListOffers godoc
// @Summary List products or services
// @Tags offers
// @Produce json
// @Param kind query string false "producto or servicio"
// @Param search query string false "Search term"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.Offer
// @Router /offers [get]
func (h *CatalogHandler) ListOffers(c *gin.Context) {
	limit, offset := paging(c, 20)

	offers, err := h.catalogService.ListOffers(c.Request.Context(), c.Query("kind"), c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, "Failed to list offers", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

func (h *CatalogHandler) GetOffer(c *gin.Context) {
	offer, err := h.catalogService.GetOffer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to get offer", err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// ListStoreOffers godoc
// @Summary List the offers of a store
// @Tags offers
// @Produce json
// @Param id path string true "Store ID"
// @Param kind query string false "producto or servicio"
// @Success 200 {array} models.Offer
// @Router /stores/{id}/offers [get]
func (h *CatalogHandler) ListStoreOffers(c *gin.Context) {
	limit, offset := paging(c, 50)

	offers, err := h.catalogService.ListStoreOffers(c.Request.Context(), c.Param("id"), c.Query("kind"), limit, offset)
	if err != nil {
		respondError(c, "Failed to list offers", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

// ListOwnerOffers godoc
// @Summary List every offer of my store
// @Description Includes offers that are not available
// @Tags offers
// @Security BearerAuth
// @Produce json
// @Param id path string true "Store ID"
// @Param kind query string false "producto or servicio"
// @Success 200 {array} models.Offer
// @Failure 403 {object} ErrorResponse
// @Router /stores/{id}/offers/manage [get]
func (h *CatalogHandler) ListOwnerOffers(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	limit, offset := paging(c, 50)
	offers, err := h.catalogService.ListOwnerOffers(c.Request.Context(), userID, c.Param("id"), c.Query("kind"), limit, offset)
	if err != nil {
		respondError(c, "Failed to list offers", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

// CreateOffer godoc
// @Summary Add a product or service to a store
// @Tags offers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Store ID"
// @Param offer body services.CreateOfferRequest true "Offer"
// @Success 201 {object} models.Offer
// @Failure 403 {object} ErrorResponse
// @Router /stores/{id}/offers [post]
func (h *CatalogHandler) CreateOffer(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	offer, err := h.catalogService.CreateOffer(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		respondError(c, "Failed to create offer", err)
		return
	}

	c.JSON(http.StatusCreated, offer)
}

func (h *CatalogHandler) UpdateOffer(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.UpdateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	offer, err := h.catalogService.UpdateOffer(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		respondError(c, "Failed to update offer", err)
		return
	}

	c.JSON(http.StatusOK, offer)
}
