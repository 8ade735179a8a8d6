package services

import (
	"context"
	"errors"
	"fmt"
	"golang-storefront-backend/internal/models"
	"golang-storefront-backend/internal/repositories"
	"golang-storefront-backend/pkg/cache"
	"golang-storefront-backend/pkg/logger"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	storeOffersTTL = 10 * time.Minute
	// maxStoreOffers bounds the cached catalog of a single store; pages
	// beyond it are read from mongo.
	maxStoreOffers = 500
)

type CatalogService struct {
	offerRepo repositories.OfferRepository
	storeRepo repositories.StoreRepository
	cache     Cache
	log       *logger.Logger
}

func NewCatalogService(
	offerRepo repositories.OfferRepository,
	storeRepo repositories.StoreRepository,
	cache Cache,
	log *logger.Logger,
) *CatalogService {
	return &CatalogService{
		offerRepo: offerRepo,
		storeRepo: storeRepo,
		cache:     cache,
		log:       log,
	}
}

type CreateOfferRequest struct {
	Kind        string   `json:"tipo" binding:"required,oneof=producto servicio"`
	Name        string   `json:"nombre" binding:"required"`
	Description string   `json:"descripcion"`
	Price       float64  `json:"precio" binding:"gte=0"`
	Stock       *int     `json:"stock" binding:"omitempty,gte=0"`
	ImageUrls   []string `json:"imagenes"`
	Tags        []string `json:"tags"`
	Duration    int      `json:"duracion_minutos" binding:"gte=0"`
}

type UpdateOfferRequest struct {
	Name        *string  `json:"nombre" binding:"omitempty,min=1"`
	Description *string  `json:"descripcion"`
	Price       *float64 `json:"precio" binding:"omitempty,gte=0"`
	Stock       *int     `json:"stock" binding:"omitempty,gte=0"`
	ImageUrls   []string `json:"imagenes"`
	Tags        []string `json:"tags"`
	IsAvailable *bool    `json:"disponible"`
}

func storeOffersKey(storeID string) string {
	return cache.Key("offers", storeID)
}

func validKind(kind string) bool {
	return kind == "" || kind == models.OfferProduct || kind == models.OfferService
}

func (s *CatalogService) CreateOffer(ctx context.Context, ownerID, storeID string, req *CreateOfferRequest) (*models.Offer, error) {
	if !validKind(req.Kind) || req.Kind == "" {
		return nil, ErrInvalidOfferKind
	}

	store, err := s.ownedStore(ctx, ownerID, storeID)
	if err != nil {
		return nil, err
	}

	offer := &models.Offer{
		StoreID:     store.ID.String(),
		Kind:        req.Kind,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageUrls:   req.ImageUrls,
		IsAvailable: true,
		Tags:        req.Tags,
	}
	if req.Kind == models.OfferService {
		offer.Duration = req.Duration
	}

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}

	s.invalidateStoreOffers(ctx, offer.StoreID)
	return offer, nil
}

func (s *CatalogService) UpdateOffer(ctx context.Context, ownerID, offerID string, req *UpdateOfferRequest) (*models.Offer, error) {
	offer, err := s.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if _, err := s.ownedStore(ctx, ownerID, offer.StoreID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		offer.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		offer.Description = *req.Description
	}
	if req.Price != nil {
		offer.Price = *req.Price
	}
	if req.Stock != nil {
		offer.Stock = req.Stock
	}
	if req.ImageUrls != nil {
		offer.ImageUrls = req.ImageUrls
	}
	if req.Tags != nil {
		offer.Tags = req.Tags
	}
	if req.IsAvailable != nil {
		offer.IsAvailable = *req.IsAvailable
	}

	if err := s.offerRepo.Update(ctx, offer); err != nil {
		return nil, fmt.Errorf("update offer: %w", err)
	}

	s.invalidateStoreOffers(ctx, offer.StoreID)
	return offer, nil
}

func (s *CatalogService) GetOffer(ctx context.Context, offerID string) (*models.Offer, error) {
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
	return offer, nil
}

// ListStoreOffers returns the available offers of a store. The first
// maxStoreOffers offers of a store are cached under offers:<store>; kind and
// paging are applied on the cached list. When the store has more offers than
// that and the request cannot be served from the cached slice, the repository
// is paged directly.
func (s *CatalogService) ListStoreOffers(ctx context.Context, storeID, kind string, limit, offset int) ([]models.Offer, error) {
	if !validKind(kind) {
		return nil, ErrInvalidOfferKind
	}

	var offers []models.Offer
	if err := s.cache.Get(ctx, storeOffersKey(storeID), &offers); err != nil {
		offers, err = s.offerRepo.GetByStoreID(ctx, storeID, "", maxStoreOffers, 0)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, storeOffersKey(storeID), offers, storeOffersTTL); err != nil {
			s.log.Warn("failed to cache store offers", "store_id", storeID, "error", err)
		}
	}

	truncated := len(offers) >= maxStoreOffers
	if truncated && (kind != "" || limit <= 0 || offset+limit > len(offers)) {
		if offset < 0 {
			offset = 0
		}
		return s.offerRepo.GetByStoreID(ctx, storeID, kind, limit, offset)
	}

	filtered := make([]models.Offer, 0, len(offers))
	for _, offer := range offers {
		if kind == "" || offer.Kind == kind {
			filtered = append(filtered, offer)
		}
	}

	return paginate(filtered, limit, offset), nil
}

// ListOwnerOffers returns every offer of a store owned by ownerID, including
// the ones switched off, so the owner can switch them back on. Not cached.
func (s *CatalogService) ListOwnerOffers(ctx context.Context, ownerID, storeID, kind string, limit, offset int) ([]models.Offer, error) {
	if !validKind(kind) {
		return nil, ErrInvalidOfferKind
	}

	store, err := s.ownedStore(ctx, ownerID, storeID)
	if err != nil {
		return nil, err
	}

	return s.offerRepo.GetAllByStoreID(ctx, store.ID.String(), kind, limit, offset)
}

// ListOffers backs the products and services tabs: every available offer of
// the given kind, optionally filtered by a search term.
func (s *CatalogService) ListOffers(ctx context.Context, kind, search string, limit, offset int) ([]models.Offer, error) {
	if !validKind(kind) {
		return nil, ErrInvalidOfferKind
	}
	return s.offerRepo.Search(ctx, kind, strings.TrimSpace(search), limit, offset)
}

func (s *CatalogService) ownedStore(ctx context.Context, ownerID, storeID string) (*models.Store, error) {
	id, err := uuid.Parse(storeID)
	if err != nil {
		return nil, ErrStoreNotFound
	}

	store, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	if store.OwnerID.String() != ownerID {
		return nil, ErrNotOwner
	}
	return store, nil
}

func (s *CatalogService) invalidateStoreOffers(ctx context.Context, storeID string) {
	if err := s.cache.Delete(ctx, storeOffersKey(storeID)); err != nil {
		s.log.Warn("failed to invalidate store offers", "store_id", storeID, "error", err)
	}
}

func paginate(offers []models.Offer, limit, offset int) []models.Offer {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(offers) {
		return []models.Offer{}
	}
	end := len(offers)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return offers[offset:end]
}
