package handlers

import (
	"net/http"

	"golang-storefront-backend/internal/middleware"
	"golang-storefront-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	cartService CartServiceInterface
}

func NewCartHandler(cartService CartServiceInterface) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// RegisterRoutes registers the routes for cart management
func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	// All cart routes require authentication
	cart := router.Group("/cart", authMiddleware.AuthRequired())
	{
		// Get the user's cart grouped by store
		cart.GET("", h.GetCart)
		// Add one unit of an offer
		cart.POST("/items", h.AddItem)
		// Set the quantity of an item
		cart.PUT("/items/:item_id", h.SetQuantity)
		// Remove item from cart
		cart.DELETE("/items/:item_id", h.RemoveItem)
		// Clear cart
		cart.DELETE("", h.ClearCart)
		// Place one order per store
		cart.POST("/checkout", h.Checkout)
	}
}

// GetCart godoc
// @Summary Get user's cart
// @Description Items grouped by store with subtotals and totals
// @Tags cart
// @Produce json
// @Success 200 {object} services.CartView
// @Failure 401 {object} ErrorResponse
// @Router /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.cartService.GetCart(userID))
}

// AddItem godoc
// @Summary Add item to cart
// @Description Adds one unit of the offer; repeated adds increment the quantity
// @Tags cart
// @Accept json
// @Produce json
// @Param item body services.AddToCartRequest true "Offer to add"
// @Success 200 {object} services.CartView
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.cartService.AddItem(c.Request.Context(), userID, req.OfferID)
	if err != nil {
		respondError(c, "Failed to add item", err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SetQuantity godoc
// @Summary Set item quantity
// @Description A quantity of zero or less removes the item
// @Tags cart
// @Accept json
// @Produce json
// @Param item_id path string true "Item ID"
// @Param body body services.UpdateCartItemRequest true "Quantity"
// @Success 200 {object} services.CartView
// @Router /cart/items/{item_id} [put]
func (h *CartHandler) SetQuantity(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, h.cartService.SetQuantity(userID, c.Param("item_id"), *req.Quantity))
}

// RemoveItem godoc
// @Summary Remove item from cart
// @Tags cart
// @Produce json
// @Param item_id path string true "Item ID"
// @Success 200 {object} services.CartView
// @Router /cart/items/{item_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.cartService.RemoveItem(userID, c.Param("item_id")))
}

// ClearCart godoc
// @Summary Clear cart
// @Tags cart
// @Produce json
// @Success 200 {object} services.CartView
// @Router /cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.cartService.ClearCart(userID))
}

// Checkout godoc
// @Summary Checkout cart
// @Description Creates one order per store, records pending payments and empties the cart
// @Tags cart
// @Accept json
// @Produce json
// @Param body body services.CheckoutRequest true "Delivery and payment"
// @Success 201 {object} services.CheckoutResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /cart/checkout [post]
func (h *CartHandler) Checkout(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	response, err := h.cartService.Checkout(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, "Checkout failed", err)
		return
	}

	c.JSON(http.StatusCreated, response)
}
