package services

import (
	"context"
	"errors"
	"golang-storefront-backend/internal/models"
	"golang-storefront-backend/internal/repositories"

	"github.com/google/uuid"
)

type OrderService struct {
	orderRepo repositories.OrderRepository
}

func NewOrderService(orderRepo repositories.OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

func (s *OrderService) ListOrders(ctx context.Context, userID string, limit, offset int) (*OrderListResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	orders, total, err := s.orderRepo.GetByUserID(ctx, userUUID, limit, offset)
	if err != nil {
		return nil, err
	}

	return &OrderListResponse{
		Orders: orders,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// GetOrder returns an order of userID. Orders of other users are reported as
// not found.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	orderUUID, err := uuid.Parse(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	order, err := s.orderRepo.GetByID(ctx, orderUUID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.UserID.String() != userID {
		return nil, ErrOrderNotFound
	}

	return order, nil
}
