package handlers

import (
	"context"
	"golang-storefront-backend/internal/models"
	"golang-storefront-backend/internal/services"
	"io"
)

// CatalogServiceInterface defines the contract for catalog service
type CatalogServiceInterface interface {
	CreateOffer(ctx context.Context, ownerID, storeID string, req *services.CreateOfferRequest) (*models.Offer, error)
	UpdateOffer(ctx context.Context, ownerID, offerID string, req *services.UpdateOfferRequest) (*models.Offer, error)
	GetOffer(ctx context.Context, offerID string) (*models.Offer, error)
	ListStoreOffers(ctx context.Context, storeID, kind string, limit, offset int) ([]models.Offer, error)
	ListOwnerOffers(ctx context.Context, ownerID, storeID, kind string, limit, offset int) ([]models.Offer, error)
	ListOffers(ctx context.Context, kind, search string, limit, offset int) ([]models.Offer, error)
}

// ProfileServiceInterface defines the contract for profile service
type ProfileServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID string, req *services.UpdateProfileRequest) (*models.Profile, error)
	UploadAvatar(ctx context.Context, userID, filename string, r io.Reader) (*models.Profile, error)
}
