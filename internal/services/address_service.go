package services

import (
	"context"
	"errors"
	"time"

	"golang-storefront-backend/internal/models"
	"golang-storefront-backend/internal/repositories"

	"github.com/google/uuid"
)

type AddressService struct {
	addressRepo repositories.AddressRepository
}

func NewAddressService(addressRepo repositories.AddressRepository) *AddressService {
	return &AddressService{
		addressRepo: addressRepo,
	}
}

// Request and Response types
type CreateAddressRequest struct {
	Label        string `json:"label" binding:"required,oneof=casa oficina otro"`
	AddressLine1 string `json:"address_line1" binding:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	PostalCode   string `json:"postal_code" binding:"required"`
	Country      string `json:"country" binding:"required"`
	IsDefault    bool   `json:"is_default"`
}

type UpdateAddressRequest struct {
	Label        string `json:"label" binding:"omitempty,oneof=casa oficina otro"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	IsDefault    *bool  `json:"is_default"`
}

type AddressListResponse struct {
	Addresses  []models.Address `json:"addresses"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
}

func (s *AddressService) CreateAddress(ctx context.Context, userID string, req *CreateAddressRequest) (*models.Address, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	// Only one default address per user
	if req.IsDefault {
		if err := s.addressRepo.UnsetDefaultAddresses(ctx, userUUID); err != nil {
			return nil, err
		}
	}

	address := &models.Address{
		ID:           uuid.New(),
		UserID:       userUUID,
		Label:        req.Label,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
		PostalCode:   req.PostalCode,
		IsDefault:    req.IsDefault,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, err
	}

	return address, nil
}

func (s *AddressService) GetAddresses(ctx context.Context, userID string, page, limit int) (*AddressListResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	addresses, total, err := s.addressRepo.GetByUserID(ctx, userUUID, offset, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &AddressListResponse{
		Addresses:  addresses,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// GetAddressByID returns the address only if it belongs to userID.
func (s *AddressService) GetAddressByID(ctx context.Context, userID, addressID string) (*models.Address, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	id, err := uuid.Parse(addressID)
	if err != nil {
		return nil, ErrAddressNotFound
	}

	address, err := s.addressRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}

	// Someone else's address looks the same as a missing one
	if address.UserID != userUUID {
		return nil, ErrAddressNotFound
	}

	return address, nil
}

func (s *AddressService) UpdateAddress(ctx context.Context, userID, addressID string, req *UpdateAddressRequest) (*models.Address, error) {
	address, err := s.GetAddressByID(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	if req.Label != "" {
		address.Label = req.Label
	}
	if req.AddressLine1 != "" {
		address.AddressLine1 = req.AddressLine1
	}
	if req.AddressLine2 != "" {
		address.AddressLine2 = req.AddressLine2
	}
	if req.City != "" {
		address.City = req.City
	}
	if req.State != "" {
		address.State = req.State
	}
	if req.PostalCode != "" {
		address.PostalCode = req.PostalCode
	}
	if req.Country != "" {
		address.Country = req.Country
	}
	if req.IsDefault != nil {
		if *req.IsDefault {
			if err := s.addressRepo.UnsetDefaultAddresses(ctx, address.UserID); err != nil {
				return nil, err
			}
		}
		address.IsDefault = *req.IsDefault
	}
	address.UpdatedAt = time.Now()

	if err := s.addressRepo.Update(ctx, address); err != nil {
		return nil, err
	}

	return address, nil
}

func (s *AddressService) DeleteAddress(ctx context.Context, userID, addressID string) error {
	address, err := s.GetAddressByID(ctx, userID, addressID)
	if err != nil {
		return err
	}

	return s.addressRepo.Delete(ctx, address.ID)
}

func (s *AddressService) SetDefaultAddress(ctx context.Context, userID, addressID string) (*models.Address, error) {
	address, err := s.GetAddressByID(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	if err := s.addressRepo.UnsetDefaultAddresses(ctx, address.UserID); err != nil {
		return nil, err
	}

	address.IsDefault = true
	address.UpdatedAt = time.Now()
	if err := s.addressRepo.Update(ctx, address); err != nil {
		return nil, err
	}

	return address, nil
}
