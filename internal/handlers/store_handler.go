package handlers

import (
	"net/http"

	"golang-storefront-backend/internal/middleware"
	"golang-storefront-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type StoreHandler struct {
	storeService *services.StoreService
}

func NewStoreHandler(storeService *services.StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

// RegisterRoutes registers the routes for comercios
func (h *StoreHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	stores := router.Group("/stores")
	{
		// Public routes
		stores.GET("", h.ListStores)
		stores.GET("/categories", h.ListCategories)
		stores.GET("/:id", h.GetStore)

		// Any signed in user can open a store
		stores.POST("", authMiddleware.AuthRequired(), h.CreateStore)
		stores.GET("/mine", authMiddleware.AuthRequired(), h.ListMyStores)

		owner := stores.Group("", authMiddleware.AuthRequired(), authMiddleware.MerchantRequired())
		owner.PUT("/:id", h.UpdateStore)
		owner.POST("/:id/categories", h.AssignCategory)
		owner.POST("/:id/image", h.UploadStoreImage)
	}
}

// CreateStore godoc
// @Summary Create a store
// @Description Register a comercio owned by the current user
// @Tags stores
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param store body services.CreateStoreRequest true "Store data"
// @Success 201 {object} models.Store
// @Failure 400 {object} ErrorResponse
// @Router /stores [post]
func (h *StoreHandler) CreateStore(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	store, err := h.storeService.CreateStore(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, "Failed to create store", err)
		return
	}

	c.JSON(http.StatusCreated, store)
}

// ListStores godoc
// @Summary List stores
// @Tags stores
// @Produce json
// @Param search query string false "Name or description"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} services.StoreListResponse
// @Router /stores [get]
func (h *StoreHandler) ListStores(c *gin.Context) {
	limit, offset := paging(c, 20)

	response, err := h.storeService.ListStores(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, "Failed to list stores", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetStore godoc
// @Summary Get a store
// @Tags stores
// @Produce json
// @Param id path string true "Store ID"
// @Success 200 {object} services.StoreResponse
// @Failure 404 {object} ErrorResponse
// @Router /stores/{id} [get]
func (h *StoreHandler) GetStore(c *gin.Context) {
	store, err := h.storeService.GetStore(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to get store", err)
		return
	}

	c.JSON(http.StatusOK, store)
}

func (h *StoreHandler) ListMyStores(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	stores, err := h.storeService.ListStoresByOwner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Failed to list stores", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stores": stores})
}

// UpdateStore godoc
// @Summary Update a store
// @Tags stores
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Store ID"
// @Param store body services.UpdateStoreRequest true "Fields to change"
// @Success 200 {object} models.Store
// @Failure 403 {object} ErrorResponse
// @Router /stores/{id} [put]
func (h *StoreHandler) UpdateStore(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	store, err := h.storeService.UpdateStore(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		respondError(c, "Failed to update store", err)
		return
	}

	c.JSON(http.StatusOK, store)
}

func (h *StoreHandler) ListCategories(c *gin.Context) {
	categories, err := h.storeService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list categories", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

type AssignCategoryRequest struct {
	CategoryID string `json:"categoria_id" binding:"required"`
}

func (h *StoreHandler) AssignCategory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req AssignCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.storeService.AssignCategory(c.Request.Context(), userID, c.Param("id"), req.CategoryID); err != nil {
		respondError(c, "Failed to assign category", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category assigned"})
}

// UploadStoreImage godoc
// @Summary Upload the store image
// @Tags stores
// @Security BearerAuth
// @Accept multipart/form-data
// @Param id path string true "Store ID"
// @Param image formData file true "Image"
// @Success 200 {object} models.Store
// @Router /stores/{id}/image [post]
func (h *StoreHandler) UploadStoreImage(c *gin.Context) {
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

	store, err := h.storeService.UploadStoreImage(c.Request.Context(), userID, c.Param("id"), file.Filename, f)
	if err != nil {
		respondError(c, "Failed to upload image", err)
		return
	}

	c.JSON(http.StatusOK, store)
}
