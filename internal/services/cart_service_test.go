package services

import (
	"context"
	"testing"
	"time"

	"golang-storefront-backend/internal/cart"
	"golang-storefront-backend/internal/models"
	"golang-storefront-backend/pkg/logger"
	"golang-storefront-backend/pkg/messaging"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartFixture struct {
	svc       *CartService
	offers    *fakeOfferRepo
	stores    *fakeStoreRepo
	orders    *fakeOrderRepo
	addresses *fakeAddressRepo
	events    *fakePublisher
	userID    string
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	f := &cartFixture{
		offers:    newFakeOfferRepo(),
		stores:    newFakeStoreRepo(),
		orders:    &fakeOrderRepo{},
		addresses: newFakeAddressRepo(),
		events:    &fakePublisher{},
		userID:    uuid.NewString(),
	}
	f.svc = NewCartService(
		cart.NewStore(),
		f.offers,
		f.stores,
		f.orders,
		NewAddressService(f.addresses),
		f.events,
		DeliveryOptions(decimal.NewFromInt(99)),
		logger.NewNop(),
	)
	return f
}

func (f *cartFixture) address(t *testing.T, userID string) string {
	t.Helper()
	uid := uuid.MustParse(userID)
	a := &models.Address{
		ID:           uuid.New(),
		UserID:       uid,
		Label:        "casa",
		AddressLine1: "Av. Reforma 100",
		City:         "CDMX",
		State:        "CDMX",
		Country:      "MX",
		PostalCode:   "06600",
	}
	require.NoError(t, f.addresses.Create(context.Background(), a))
	return a.ID.String()
}

func TestCartServiceAddItemResolvesOffer(t *testing.T) {
	f := newCartFixture(t)
	store := f.stores.add(uuid.New(), "Shop A")
	offer := f.offers.add(store.ID.String(), models.OfferProduct, "tacos", 100)

	ctx := context.Background()
	_, err := f.svc.AddItem(ctx, f.userID, offer.ID.Hex())
	require.NoError(t, err)
	view, err := f.svc.AddItem(ctx, f.userID, offer.ID.Hex())
	require.NoError(t, err)

	require.Len(t, view.Stores, 1)
	group := view.Stores[0]
	assert.Equal(t, store.ID.String(), group.StoreID)
	assert.Equal(t, "Shop A", group.StoreName)
	require.Len(t, group.Items, 1)
	assert.Equal(t, 2, group.Items[0].Quantity)
	assert.Equal(t, "https://img.test/tacos.jpg", group.Items[0].ImageRef)
	assert.True(t, decimal.NewFromInt(200).Equal(view.TotalAmount))
	assert.Equal(t, 2, view.TotalItems)
	assert.False(t, view.IsEmpty)
}

func TestCartServiceAddItemRejectsBadOffers(t *testing.T) {
	f := newCartFixture(t)
	store := f.stores.add(uuid.New(), "Shop A")
	unavailable := f.offers.add(store.ID.String(), models.OfferProduct, "agotado", 10)
	unavailable.IsAvailable = false
	orphan := f.offers.add(uuid.NewString(), models.OfferProduct, "huerfano", 10)

	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.userID, "not-an-object-id")
	assert.ErrorIs(t, err, ErrOfferNotFound)

	_, err = f.svc.AddItem(ctx, f.userID, "64b7f0c2a1b2c3d4e5f60718")
	assert.ErrorIs(t, err, ErrOfferNotFound)

	_, err = f.svc.AddItem(ctx, f.userID, unavailable.ID.Hex())
	assert.ErrorIs(t, err, ErrOfferUnavailable)

	_, err = f.svc.AddItem(ctx, f.userID, orphan.ID.Hex())
	assert.ErrorIs(t, err, ErrStoreNotFound)

	assert.True(t, f.svc.GetCart(f.userID).IsEmpty)
}

func TestCartServiceQuantityAndRemoval(t *testing.T) {
	f := newCartFixture(t)
	store := f.stores.add(uuid.New(), "Shop A")
	offer := f.offers.add(store.ID.String(), models.OfferService, "corte", 150)

	_, err := f.svc.AddItem(context.Background(), f.userID, offer.ID.Hex())
	require.NoError(t, err)

	view := f.svc.SetQuantity(f.userID, offer.ID.Hex(), 4)
	assert.Equal(t, 4, view.TotalItems)
	assert.True(t, decimal.NewFromInt(600).Equal(view.TotalAmount))

	view = f.svc.SetQuantity(f.userID, "missing", 3)
	assert.Equal(t, 4, view.TotalItems)

	view = f.svc.SetQuantity(f.userID, offer.ID.Hex(), -1)
	assert.True(t, view.IsEmpty)
	assert.Empty(t, view.Stores)
}

func TestCartServiceSessionsAreIsolated(t *testing.T) {
	f := newCartFixture(t)
	store := f.stores.add(uuid.New(), "Shop A")
	offer := f.offers.add(store.ID.String(), models.OfferProduct, "pan", 20)
	other := uuid.NewString()

	_, err := f.svc.AddItem(context.Background(), f.userID, offer.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, 1, f.svc.GetCart(f.userID).TotalItems)
	assert.True(t, f.svc.GetCart(other).IsEmpty)

	f.svc.EndSession(f.userID)
	assert.True(t, f.svc.GetCart(f.userID).IsEmpty)
}

func TestCartServiceSweepSessionsExpiresIdleCarts(t *testing.T) {
	carts := cart.NewStore()
	svc := NewCartService(carts, nil, nil, nil, nil, nil, nil, logger.NewNop())
	carts.Update("idle-user", func(c *cart.Cart) {
		c.AddItem(cart.Candidate{ID: "p1", StoreID: "s1", UnitPrice: decimal.NewFromInt(5)})
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.SweepSessions(ctx, time.Millisecond, time.Nanosecond)
	}()

	assert.Eventually(t, func() bool { return carts.Sessions() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.svc.Checkout(context.Background(), f.userID, &CheckoutRequest{
		DeliveryOption: DeliveryPickup,
		PaymentMethod:  models.PaymentCash,
	})

	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Empty(t, f.orders.orders)
	assert.Empty(t, f.events.events)
}

func TestCheckoutCreatesOneOrderPerStore(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	shopA := f.stores.add(uuid.New(), "Shop A")
	shopB := f.stores.add(uuid.New(), "Shop B")
	p1 := f.offers.add(shopA.ID.String(), models.OfferProduct, "p1", 100)
	p2 := f.offers.add(shopB.ID.String(), models.OfferProduct, "p2", 50)
	p3 := f.offers.add(shopA.ID.String(), models.OfferProduct, "p3", 10.5)

	for _, id := range []string{p1.ID.Hex(), p1.ID.Hex(), p2.ID.Hex(), p3.ID.Hex()} {
		_, err := f.svc.AddItem(ctx, f.userID, id)
		require.NoError(t, err)
	}

	resp, err := f.svc.Checkout(ctx, f.userID, &CheckoutRequest{
		DeliveryOption: DeliveryExpress,
		PaymentMethod:  models.PaymentCard,
		AddressID:      f.address(t, f.userID),
	})
	require.NoError(t, err)

	require.Len(t, resp.Orders, 2)
	assert.True(t, decimal.RequireFromString("260.5").Equal(resp.Subtotal))
	assert.True(t, decimal.NewFromInt(99).Equal(resp.DeliveryFee))
	assert.True(t, decimal.RequireFromString("359.5").Equal(resp.Total))

	first, second := resp.Orders[0], resp.Orders[1]
	assert.Equal(t, shopA.ID, first.StoreID)
	assert.Equal(t, shopB.ID, second.StoreID)
	assert.Equal(t, first.CheckoutID, second.CheckoutID)

	// fee only on the first store's order
	assert.True(t, decimal.NewFromInt(99).Equal(first.DeliveryFee))
	assert.True(t, decimal.Zero.Equal(second.DeliveryFee))
	assert.True(t, decimal.RequireFromString("210.5").Equal(first.Subtotal))
	assert.True(t, decimal.RequireFromString("309.5").Equal(first.Total))
	assert.True(t, decimal.NewFromInt(50).Equal(second.Total))

	sum := decimal.Zero
	for _, order := range resp.Orders {
		sum = sum.Add(order.Total)
		assert.Equal(t, models.OrderPending, order.Status)
		assert.Equal(t, models.DeliveryHome, order.DeliveryType)
		assert.Contains(t, order.DeliveryAddress, "Av. Reforma 100")
		assert.Regexp(t, `^\d{6}$`, order.SecurityCode)
		require.NotNil(t, order.Payment)
		assert.Equal(t, models.PaymentPending, order.Payment.Status)
		assert.Equal(t, models.PaymentCard, order.Payment.Method)
		assert.True(t, order.Total.Equal(order.Payment.Amount))
		for _, d := range order.Details {
			assert.Equal(t, order.ID, d.OrderID)
		}
	}
	assert.True(t, resp.Total.Equal(sum))

	require.Len(t, first.Details, 2)
	assert.Equal(t, p1.ID.Hex(), first.Details[0].OfferID)
	assert.Equal(t, 2, first.Details[0].Quantity)
	assert.Equal(t, p3.ID.Hex(), first.Details[1].OfferID)

	assert.Len(t, f.orders.orders, 2)
	assert.True(t, f.svc.GetCart(f.userID).IsEmpty)

	require.Len(t, f.events.events, 2)
	event, ok := f.events.events[0].value.(messaging.OrderPlacedEvent)
	require.True(t, ok)
	assert.Equal(t, messaging.TopicOrders, f.events.events[0].topic)
	assert.Equal(t, messaging.EventOrderPlaced, event.Type)
	assert.Equal(t, "309.50", event.Total)
	assert.Equal(t, 3, event.ItemCount)
}

func TestCheckoutPickupNeedsNoAddress(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	store := f.stores.add(uuid.New(), "Shop A")
	offer := f.offers.add(store.ID.String(), models.OfferProduct, "p1", 40)
	_, err := f.svc.AddItem(ctx, f.userID, offer.ID.Hex())
	require.NoError(t, err)

	resp, err := f.svc.Checkout(ctx, f.userID, &CheckoutRequest{
		DeliveryOption: DeliveryPickup,
		PaymentMethod:  models.PaymentCash,
	})
	require.NoError(t, err)

	require.Len(t, resp.Orders, 1)
	assert.Equal(t, models.DeliveryPickup, resp.Orders[0].DeliveryType)
	assert.Empty(t, resp.Orders[0].DeliveryAddress)
	assert.True(t, decimal.NewFromInt(40).Equal(resp.Total))
}

func TestCheckoutValidation(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	store := f.stores.add(uuid.New(), "Shop A")
	offer := f.offers.add(store.ID.String(), models.OfferProduct, "p1", 40)
	_, err := f.svc.AddItem(ctx, f.userID, offer.ID.Hex())
	require.NoError(t, err)

	strangerAddress := f.address(t, uuid.NewString())

	tests := []struct {
		name string
		req  CheckoutRequest
		want error
	}{
		{"unknown delivery", CheckoutRequest{DeliveryOption: "drone", PaymentMethod: models.PaymentCash}, ErrInvalidDeliveryOption},
		{"unknown payment", CheckoutRequest{DeliveryOption: DeliveryPickup, PaymentMethod: "bitcoin"}, ErrInvalidPaymentMethod},
		{"home without address", CheckoutRequest{DeliveryOption: DeliveryStandard, PaymentMethod: models.PaymentCash}, ErrAddressRequired},
		{"someone else's address", CheckoutRequest{DeliveryOption: DeliveryStandard, PaymentMethod: models.PaymentCash, AddressID: strangerAddress}, ErrAddressNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.svc.Checkout(ctx, f.userID, &req)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, f.svc.GetCart(f.userID).TotalItems)
		})
	}
	assert.Empty(t, f.orders.orders)
}

func TestCheckoutKeepsCartWhenPersistFails(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	store := f.stores.add(uuid.New(), "Shop A")
	offer := f.offers.add(store.ID.String(), models.OfferProduct, "p1", 40)
	_, err := f.svc.AddItem(ctx, f.userID, offer.ID.Hex())
	require.NoError(t, err)

	f.orders.err = errBoom
	_, err = f.svc.Checkout(ctx, f.userID, &CheckoutRequest{
		DeliveryOption: DeliveryPickup,
		PaymentMethod:  models.PaymentCash,
	})

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, f.svc.GetCart(f.userID).TotalItems)
	assert.Empty(t, f.events.events)
}

func TestCheckoutSucceedsWhenPublishFails(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	store := f.stores.add(uuid.New(), "Shop A")
	offer := f.offers.add(store.ID.String(), models.OfferProduct, "p1", 40)
	_, err := f.svc.AddItem(ctx, f.userID, offer.ID.Hex())
	require.NoError(t, err)

	f.events.err = errBoom
	resp, err := f.svc.Checkout(ctx, f.userID, &CheckoutRequest{
		DeliveryOption: DeliveryPickup,
		PaymentMethod:  models.PaymentWallet,
	})

	require.NoError(t, err)
	assert.Len(t, resp.Orders, 1)
	assert.True(t, f.svc.GetCart(f.userID).IsEmpty)
}

func TestOrderServiceOwnership(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	store := f.stores.add(uuid.New(), "Shop A")
	offer := f.offers.add(store.ID.String(), models.OfferProduct, "p1", 40)
	_, err := f.svc.AddItem(ctx, f.userID, offer.ID.Hex())
	require.NoError(t, err)
	resp, err := f.svc.Checkout(ctx, f.userID, &CheckoutRequest{
		DeliveryOption: DeliveryPickup,
		PaymentMethod:  models.PaymentCash,
	})
	require.NoError(t, err)
	orderID := resp.Orders[0].ID.String()

	orders := NewOrderService(f.orders)

	list, err := orders.ListOrders(ctx, f.userID, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	got, err := orders.GetOrder(ctx, f.userID, orderID)
	require.NoError(t, err)
	assert.Equal(t, resp.Orders[0].ID, got.ID)

	_, err = orders.GetOrder(ctx, uuid.NewString(), orderID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = orders.GetOrder(ctx, f.userID, "nope")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
