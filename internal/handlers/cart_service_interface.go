package handlers

import (
	"context"
	"golang-storefront-backend/internal/services"
)

// CartServiceInterface defines the contract for cart service
type CartServiceInterface interface {
	GetCart(userID string) *services.CartView
	AddItem(ctx context.Context, userID, offerID string) (*services.CartView, error)
	SetQuantity(userID, itemID string, quantity int) *services.CartView
	RemoveItem(userID, itemID string) *services.CartView
	ClearCart(userID string) *services.CartView
	Checkout(ctx context.Context, userID string, req *services.CheckoutRequest) (*services.CheckoutResponse, error)
}
