package handlers

import (
	"context"
	"golang-storefront-backend/internal/services"
)

// AuthServiceInterface defines the interface for auth service operations
type AuthServiceInterface interface {
	SignUp(ctx context.Context, req *services.SignUpRequest) (*services.AuthResponse, error)
	SignIn(ctx context.Context, req *services.SignInRequest) (*services.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*services.AuthResponse, error)
	SignOut(ctx context.Context, userID string) error
}
