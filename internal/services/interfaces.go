package services

import (
	"context"
	"errors"
	"io"
	"time"
)

// Cache is the subset of the redis cache the services use.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// EventPublisher publishes domain events to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// ImageStorage stores uploaded images and returns their public URL.
type ImageStorage interface {
	Upload(ctx context.Context, key string, r io.Reader) (string, error)
}

// SessionCloser releases per-session state when a user signs out.
type SessionCloser interface {
	EndSession(userID string)
}

var (
	ErrInvalidUserID     = errors.New("invalid user ID")
	ErrNotOwner          = errors.New("not the owner of this resource")
	ErrStoreNotFound     = errors.New("store not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrAddressNotFound   = errors.New("address not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOfferNotFound     = errors.New("offer not found")
	ErrOfferUnavailable  = errors.New("offer is not available")
	ErrInvalidOfferKind  = errors.New("offer kind must be producto or servicio")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidImage      = errors.New("image is empty")
	ErrEmailTaken        = errors.New("email already registered")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrAccountInactive   = errors.New("account is not active")
	ErrInvalidRefresh    = errors.New("refresh token not found or invalid")
)
