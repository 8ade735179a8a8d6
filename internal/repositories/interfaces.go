package repositories

import (
	"context"
	"golang-storefront-backend/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileRepository interface for PostgreSQL profile operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}

// StoreRepository interface for PostgreSQL store (comercio) operations
type StoreRepository interface {
	Create(ctx context.Context, store *models.Store) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	Update(ctx context.Context, store *models.Store) error
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]models.Store, error)
	Search(ctx context.Context, query string, limit, offset int) ([]models.Store, int64, error)
	ListCategories(ctx context.Context) ([]models.StoreCategory, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.StoreCategory, error)
	AssignCategory(ctx context.Context, storeID, categoryID uuid.UUID) error
}

// OrderRepository interface for PostgreSQL order operations
type OrderRepository interface {
	// CreateCheckout stores all orders of one checkout, with their details and
	// payments, atomically.
	CreateCheckout(ctx context.Context, orders []*models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, int64, error)
}

// AddressRepository interface for PostgreSQL address operations
type AddressRepository interface {
	Create(ctx context.Context, address *models.Address) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Address, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.Address, int64, error)
	Update(ctx context.Context, address *models.Address) error
	Delete(ctx context.Context, id uuid.UUID) error
	UnsetDefaultAddresses(ctx context.Context, userID uuid.UUID) error
}

// OfferRepository interface for MongoDB offer (product/service) operations
type OfferRepository interface {
	Create(ctx context.Context, offer *models.Offer) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Offer, error)
	Update(ctx context.Context, offer *models.Offer) error
	GetByStoreID(ctx context.Context, storeID, kind string, limit, offset int) ([]models.Offer, error)
	// GetAllByStoreID also returns unavailable offers; it backs the owner's
	// catalog management view.
	GetAllByStoreID(ctx context.Context, storeID, kind string, limit, offset int) ([]models.Offer, error)
	Search(ctx context.Context, kind, query string, limit, offset int) ([]models.Offer, error)
}
