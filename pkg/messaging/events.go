package messaging

import "time"

// Topics
const (
	TopicOrders        = "order-events"
	TopicProfileEvents = "profile-events"
)

// Event types
const (
	EventOrderPlaced    = "order.placed"
	EventProfileUpdated = "profile.updated"
	EventProfileDeleted = "profile.deleted"
	EventSignedOut      = "session.signed_out"
)

type OrderPlacedEvent struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"order_id"`
	UserID        string    `json:"user_id"`
	StoreID       string    `json:"store_id"`
	Total         string    `json:"total"`
	DeliveryType  string    `json:"delivery_type"`
	PaymentMethod string    `json:"payment_method"`
	ItemCount     int       `json:"item_count"`
	PlacedAt      time.Time `json:"placed_at"`
}

// ProfileEvent announces that the profile of UserID changed and cached copies
// must be refetched.
type ProfileEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
