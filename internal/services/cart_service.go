package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"golang-storefront-backend/internal/cart"
	"golang-storefront-backend/internal/models"
	"golang-storefront-backend/internal/repositories"
	"golang-storefront-backend/pkg/logger"
	"golang-storefront-backend/pkg/messaging"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrCartEmpty             = errors.New("cart is empty")
	ErrInvalidDeliveryOption = errors.New("invalid delivery option")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrAddressRequired       = errors.New("delivery address is required")
)

// Delivery options offered at checkout
const (
	DeliveryStandard = "standard"
	DeliveryExpress  = "express"
	DeliveryPickup   = "pickup"
)

// DeliveryOption is a shipping choice shown at checkout. Type is the
// delivery type stored on the orders.
type DeliveryOption struct {
	Name string          `json:"name"`
	Type string          `json:"type"`
	Fee  decimal.Decimal `json:"fee"`
}

// DeliveryOptions returns the checkout delivery choices with the given
// express fee.
func DeliveryOptions(expressFee decimal.Decimal) map[string]DeliveryOption {
	return map[string]DeliveryOption{
		DeliveryStandard: {Name: DeliveryStandard, Type: models.DeliveryHome, Fee: decimal.Zero},
		DeliveryExpress:  {Name: DeliveryExpress, Type: models.DeliveryHome, Fee: expressFee},
		DeliveryPickup:   {Name: DeliveryPickup, Type: models.DeliveryPickup, Fee: decimal.Zero},
	}
}

// CartService is the boundary between HTTP requests and the in-memory cart of
// each session. Input is validated here and turned into cart.Candidate
// values; the cart itself never rejects anything.
type CartService struct {
	carts     *cart.Store
	offerRepo repositories.OfferRepository
	storeRepo repositories.StoreRepository
	orderRepo repositories.OrderRepository
	addresses *AddressService
	events    EventPublisher
	delivery  map[string]DeliveryOption
	log       *logger.Logger
}

func NewCartService(
	carts *cart.Store,
	offerRepo repositories.OfferRepository,
	storeRepo repositories.StoreRepository,
	orderRepo repositories.OrderRepository,
	addresses *AddressService,
	events EventPublisher,
	delivery map[string]DeliveryOption,
	log *logger.Logger,
) *CartService {
	return &CartService{
		carts:     carts,
		offerRepo: offerRepo,
		storeRepo: storeRepo,
		orderRepo: orderRepo,
		addresses: addresses,
		events:    events,
		delivery:  delivery,
		log:       log,
	}
}

type AddToCartRequest struct {
	OfferID string `json:"offer_id" binding:"required"`
}

// UpdateCartItemRequest carries the new quantity. An explicit 0 removes the
// item; a missing quantity is rejected.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type CheckoutRequest struct {
	DeliveryOption string `json:"delivery_option" binding:"required"`
	PaymentMethod  string `json:"payment_method" binding:"required"`
	AddressID      string `json:"address_id"`
}

// CartView is the grouped read model of a cart.
type CartView struct {
	Stores      []cart.StoreGroup `json:"stores"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	TotalItems  int               `json:"total_items"`
	IsEmpty     bool              `json:"is_empty"`
}

type CheckoutResponse struct {
	CheckoutID     uuid.UUID       `json:"checkout_id"`
	Orders         []models.Order  `json:"orders"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	Total          decimal.Decimal `json:"total"`
	DeliveryOption string          `json:"delivery_option"`
	PaymentMethod  string          `json:"payment_method"`
}

func newCartView(c *cart.Cart) *CartView {
	count := c.TotalItemCount()
	return &CartView{
		Stores:      c.StoreGroups(),
		TotalAmount: c.TotalAmount(),
		TotalItems:  count,
		IsEmpty:     count == 0,
	}
}

// AddItem resolves the offer and its store and adds one unit to the cart.
func (s *CartService) AddItem(ctx context.Context, userID, offerID string) (*CartView, error) {
	candidate, err := s.candidate(ctx, offerID)
	if err != nil {
		return nil, err
	}

	var view *CartView
	s.carts.Update(userID, func(c *cart.Cart) {
		c.AddItem(*candidate)
		view = newCartView(c)
	})
	return view, nil
}

func (s *CartService) candidate(ctx context.Context, offerID string) (*cart.Candidate, error) {
	objectID, err := primitive.ObjectIDFromHex(offerID)
	if err != nil {
		return nil, ErrOfferNotFound
	}

	offer, err := s.offerRepo.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	if !offer.IsAvailable {
		return nil, ErrOfferUnavailable
	}
	if offer.Price < 0 {
		return nil, fmt.Errorf("offer %s has a negative price", offerID)
	}

	storeID, err := uuid.Parse(offer.StoreID)
	if err != nil {
		return nil, ErrStoreNotFound
	}
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	return &cart.Candidate{
		ID:        offer.ID.Hex(),
		Name:      offer.Name,
		UnitPrice: decimal.NewFromFloat(offer.Price).Round(2),
		StoreID:   store.ID.String(),
		StoreName: store.Name,
		ImageRef:  offer.PrimaryImage(),
	}, nil
}

func (s *CartService) RemoveItem(userID, itemID string) *CartView {
	var view *CartView
	s.carts.Update(userID, func(c *cart.Cart) {
		c.RemoveItem(itemID)
		view = newCartView(c)
	})
	return view
}

// SetQuantity sets the quantity of an item; zero or less removes it.
func (s *CartService) SetQuantity(userID, itemID string, quantity int) *CartView {
	var view *CartView
	s.carts.Update(userID, func(c *cart.Cart) {
		c.SetQuantity(itemID, quantity)
		view = newCartView(c)
	})
	return view
}

func (s *CartService) ClearCart(userID string) *CartView {
	var view *CartView
	s.carts.Update(userID, func(c *cart.Cart) {
		c.Clear()
		view = newCartView(c)
	})
	return view
}

func (s *CartService) GetCart(userID string) *CartView {
	var view *CartView
	s.carts.View(userID, func(c *cart.Cart) {
		view = newCartView(c)
	})
	return view
}

// EndSession discards the cart of a signed out user.
func (s *CartService) EndSession(userID string) {
	s.carts.Drop(userID)
}

// SweepSessions drops, every interval until ctx is done, the carts of
// sessions idle for longer than maxIdle. maxIdle is the refresh token
// lifetime, after which the session can no longer be resumed.
func (s *CartService) SweepSessions(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if dropped := s.carts.Sweep(maxIdle); dropped > 0 {
				s.log.Info("expired idle carts", "dropped", dropped, "open_sessions", s.carts.Sessions())
			}
		case <-ctx.Done():
			return
		}
	}
}

// Checkout turns the cart into one order per store. The session cart stays
// locked for the whole checkout so that the snapshot that is persisted is the
// one that gets cleared.
func (s *CartService) Checkout(ctx context.Context, userID string, req *CheckoutRequest) (*CheckoutResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	option, ok := s.delivery[req.DeliveryOption]
	if !ok {
		return nil, ErrInvalidDeliveryOption
	}

	switch req.PaymentMethod {
	case models.PaymentCard, models.PaymentCash, models.PaymentTransfer, models.PaymentWallet:
	default:
		return nil, ErrInvalidPaymentMethod
	}

	var deliveryAddress string
	if option.Type == models.DeliveryHome {
		if req.AddressID == "" {
			return nil, ErrAddressRequired
		}
		address, err := s.addresses.GetAddressByID(ctx, userID, req.AddressID)
		if err != nil {
			return nil, err
		}
		deliveryAddress = address.OneLine()
	}

	var resp *CheckoutResponse
	var checkoutErr error
	s.carts.Update(userID, func(c *cart.Cart) {
		groups := c.StoreGroups()
		subtotal := c.TotalAmount()
		if len(groups) == 0 {
			checkoutErr = ErrCartEmpty
			return
		}

		orders, err := buildOrders(userUUID, groups, option, req.PaymentMethod, deliveryAddress)
		if err != nil {
			checkoutErr = err
			return
		}

		if err := s.orderRepo.CreateCheckout(ctx, orders); err != nil {
			checkoutErr = fmt.Errorf("create checkout: %w", err)
			return
		}

		c.Clear()

		resp = &CheckoutResponse{
			CheckoutID:     orders[0].CheckoutID,
			Orders:         make([]models.Order, 0, len(orders)),
			Subtotal:       subtotal,
			DeliveryFee:    option.Fee,
			Total:          subtotal.Add(option.Fee),
			DeliveryOption: option.Name,
			PaymentMethod:  req.PaymentMethod,
		}
		for _, order := range orders {
			resp.Orders = append(resp.Orders, *order)
		}
	})
	if checkoutErr != nil {
		return nil, checkoutErr
	}

	s.log.Info("checkout completed",
		"user_id", userID,
		"checkout_id", resp.CheckoutID.String(),
		"orders", len(resp.Orders),
		"total", resp.Total.StringFixed(2),
	)
	s.publishOrders(ctx, resp)

	return resp, nil
}

func buildOrders(userID uuid.UUID, groups []cart.StoreGroup, option DeliveryOption, paymentMethod, deliveryAddress string) ([]*models.Order, error) {
	checkoutID := uuid.New()
	now := time.Now()
	orders := make([]*models.Order, 0, len(groups))

	for i, group := range groups {
		storeID, err := uuid.Parse(group.StoreID)
		if err != nil {
			return nil, fmt.Errorf("store %q: %w", group.StoreID, ErrStoreNotFound)
		}

		code, err := securityCode()
		if err != nil {
			return nil, err
		}

		// The delivery fee is charged once, on the first store's order.
		fee := decimal.Zero
		if i == 0 {
			fee = option.Fee
		}
		total := group.Subtotal.Add(fee)

		order := &models.Order{
			ID:              uuid.New(),
			CheckoutID:      checkoutID,
			UserID:          userID,
			StoreID:         storeID,
			StoreName:       group.StoreName,
			Status:          models.OrderPending,
			DeliveryType:    option.Type,
			DeliveryAddress: deliveryAddress,
			SecurityCode:    code,
			Subtotal:        group.Subtotal,
			DeliveryFee:     fee,
			Total:           total,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		for _, item := range group.Items {
			order.Details = append(order.Details, models.OrderDetail{
				ID:        uuid.New(),
				OrderID:   order.ID,
				OfferID:   item.ID,
				Name:      item.Name,
				ImageURL:  item.ImageRef,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}

		order.Payment = &models.Payment{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Method:    paymentMethod,
			Status:    models.PaymentPending,
			Amount:    total,
			CreatedAt: now,
		}

		orders = append(orders, order)
	}

	return orders, nil
}

func (s *CartService) publishOrders(ctx context.Context, resp *CheckoutResponse) {
	if s.events == nil {
		return
	}

	for _, order := range resp.Orders {
		count := 0
		for _, d := range order.Details {
			count += d.Quantity
		}

		event := messaging.OrderPlacedEvent{
			Type:          messaging.EventOrderPlaced,
			OrderID:       order.ID.String(),
			UserID:        order.UserID.String(),
			StoreID:       order.StoreID.String(),
			Total:         order.Total.StringFixed(2),
			DeliveryType:  order.DeliveryType,
			PaymentMethod: resp.PaymentMethod,
			ItemCount:     count,
			PlacedAt:      order.CreatedAt,
		}
		if err := s.events.Publish(ctx, messaging.TopicOrders, order.StoreID.String(), event); err != nil {
			s.log.Warn("failed to publish order event", "order_id", order.ID.String(), "error", err)
		}
	}
}

// securityCode returns the 6 digit code the customer shows on pickup or
// delivery.
func securityCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
