package services

import (
	"context"
	"errors"
	"fmt"
	"golang-storefront-backend/internal/models"
	"golang-storefront-backend/internal/repositories"
	"golang-storefront-backend/pkg/auth"
	"golang-storefront-backend/pkg/cache"
	"golang-storefront-backend/pkg/logger"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	profileRepo repositories.ProfileRepository
	jwtManager  *auth.JWTManager
	cache       Cache
	sessions    SessionCloser
	log         *logger.Logger
}

func NewAuthService(
	profileRepo repositories.ProfileRepository,
	jwtManager *auth.JWTManager,
	cache Cache,
	sessions SessionCloser,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		profileRepo: profileRepo,
		jwtManager:  jwtManager,
		cache:       cache,
		sessions:    sessions,
		log:         log,
	}
}

// Refresh token storage methods
func (s *AuthService) storeRefreshToken(ctx context.Context, userID, refreshToken string) error {
	return s.cache.Set(ctx, cache.Key("refresh_token", userID), refreshToken, s.jwtManager.RefreshExpiry())
}

func (s *AuthService) getStoredRefreshToken(ctx context.Context, userID string) (string, error) {
	var token string
	err := s.cache.Get(ctx, cache.Key("refresh_token", userID), &token)
	return token, err
}

func (s *AuthService) invalidateRefreshToken(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, cache.Key("refresh_token", userID))
}

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Username string `json:"username" binding:"required,min=3"`
	Name     string `json:"nombre" binding:"required"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int            `json:"expires_in"` // seconds until access token expires
	Profile      models.Profile `json:"profile"`
}

func (s *AuthService) SignUp(ctx context.Context, req *SignUpRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if _, err := s.profileRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if _, err := s.profileRepo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Username:     username,
		Name:         strings.TrimSpace(req.Name),
		Role:         models.RoleCustomer,
		Status:       "active",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	s.log.Info("profile created", "user_id", profile.ID.String())
	return s.issueTokens(ctx, profile)
}

func (s *AuthService) SignIn(ctx context.Context, req *SignInRequest) (*AuthResponse, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	if profile.Status != "active" {
		return nil, ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredential
	}

	return s.issueTokens(ctx, profile)
}

func (s *AuthService) issueTokens(ctx context.Context, profile *models.Profile) (*AuthResponse, error) {
	tokenPair, err := s.jwtManager.GenerateTokenPair(profile.ID.String(), profile.Role, profile.Email)
	if err != nil {
		return nil, err
	}

	if err := s.storeRefreshToken(ctx, profile.ID.String(), tokenPair.RefreshToken); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &AuthResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.jwtManager.AccessExpiry().Seconds()),
		Profile:      *profile,
	}, nil
}

// Refresh validates a refresh token and issues a new access token. The role is
// read again so that a promotion to comerciante shows up in the new token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != auth.RefreshToken {
		return nil, ErrInvalidRefresh
	}

	storedToken, err := s.getStoredRefreshToken(ctx, claims.UserID)
	if err != nil || storedToken != refreshToken {
		return nil, ErrInvalidRefresh
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrProfileNotFound
	}

	if profile.Status != "active" {
		return nil, ErrAccountInactive
	}

	accessToken, err := s.jwtManager.RefreshAccessToken(refreshToken, profile.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.jwtManager.AccessExpiry().Seconds()),
		Profile:      *profile,
	}, nil
}

// SignOut invalidates the refresh token, evicts the cached profile and drops
// the in-memory cart of the session.
func (s *AuthService) SignOut(ctx context.Context, userID string) error {
	if err := s.invalidateRefreshToken(ctx, userID); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, profileCacheKey(userID)); err != nil {
		s.log.Warn("failed to evict profile cache", "user_id", userID, "error", err)
	}

	if s.sessions != nil {
		s.sessions.EndSession(userID)
	}
	return nil
}
