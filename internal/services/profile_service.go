package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"golang-storefront-backend/internal/models"
	"golang-storefront-backend/internal/repositories"
	"golang-storefront-backend/pkg/cache"
	"golang-storefront-backend/pkg/logger"
	"golang-storefront-backend/pkg/messaging"
	"golang-storefront-backend/pkg/storage"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

const profileCacheTTL = 24 * time.Hour

func profileCacheKey(userID string) string {
	return cache.Key("profile", userID)
}

// ProfileService keeps the local profile in sync with the authenticated
// identity. Reads go through the redis cache; every write evicts it and
// announces the change on the profile-events topic so other instances evict
// theirs too.
type ProfileService struct {
	profileRepo repositories.ProfileRepository
	cache       Cache
	storage     ImageStorage
	events      EventPublisher
	log         *logger.Logger
}

func NewProfileService(
	profileRepo repositories.ProfileRepository,
	cache Cache,
	storage ImageStorage,
	events EventPublisher,
	log *logger.Logger,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		cache:       cache,
		storage:     storage,
		events:      events,
		log:         log,
	}
}

type UpdateProfileRequest struct {
	Name        *string `json:"nombre" binding:"omitempty,min=1"`
	Username    *string `json:"username" binding:"omitempty,min=3"`
	Age         *int    `json:"edad" binding:"omitempty,gte=0,lte=150"`
	Location    *string `json:"ubicacion"`
	BankAccount *string `json:"cuenta_bancaria"`
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var cached models.Profile
	if err := s.cache.Get(ctx, profileCacheKey(userID), &cached); err == nil {
		return &cached, nil
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	profile, err := s.profileRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, profileCacheKey(userID), profile, profileCacheTTL); err != nil {
		s.log.Warn("failed to cache profile", "user_id", userID, "error", err)
	}

	return profile, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.Profile, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		existing, err := s.profileRepo.GetByUsername(ctx, username)
		if err == nil && existing.ID != uid {
			return nil, ErrUsernameTaken
		}
		updates["username"] = username
	}
	if req.Age != nil {
		updates["age"] = *req.Age
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.BankAccount != nil {
		updates["bank_account"] = *req.BankAccount
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := s.profileRepo.UpdateFields(ctx, uid, updates); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrProfileNotFound
			}
			return nil, fmt.Errorf("update profile: %w", err)
		}
		s.profileChanged(ctx, userID)
	}

	return s.GetProfile(ctx, userID)
}

// UploadAvatar stores the image at profiles/<id>/avatar.<ext>, replacing the
// previous one, and points the profile at it.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID, filename string, r io.Reader) (*models.Profile, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrInvalidUserID
	}
	if r == nil {
		return nil, ErrInvalidImage
	}

	key := fmt.Sprintf("profiles/%s/avatar.%s", uid.String(), storage.Extension(filename))
	url, err := s.storage.Upload(ctx, key, r)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	err = s.profileRepo.UpdateFields(ctx, uid, map[string]interface{}{
		"image_url":  url,
		"updated_at": time.Now(),
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("save avatar url: %w", err)
	}

	s.profileChanged(ctx, userID)
	return s.GetProfile(ctx, userID)
}

// SetRole changes the role of a profile, e.g. when a customer opens a store.
func (s *ProfileService) SetRole(ctx context.Context, userID uuid.UUID, role string) error {
	switch role {
	case models.RoleCustomer, models.RoleMerchant, models.RoleAdmin:
	default:
		return ErrInvalidRole
	}

	err := s.profileRepo.UpdateFields(ctx, userID, map[string]interface{}{
		"role":       role,
		"updated_at": time.Now(),
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProfileNotFound
		}
		return err
	}

	s.profileChanged(ctx, userID.String())
	return nil
}

// HandleProfileEvent consumes profile-events and evicts the cached profile of
// the referenced user.
func (s *ProfileService) HandleProfileEvent(ctx context.Context, payload []byte) error {
	var event messaging.ProfileEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode profile event: %w", err)
	}
	if event.UserID == "" {
		return nil
	}

	return s.cache.Delete(ctx, profileCacheKey(event.UserID))
}

func (s *ProfileService) profileChanged(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, profileCacheKey(userID)); err != nil {
		s.log.Warn("failed to evict profile cache", "user_id", userID, "error", err)
	}

	if s.events == nil {
		return
	}
	event := messaging.ProfileEvent{
		Type:       messaging.EventProfileUpdated,
		UserID:     userID,
		OccurredAt: time.Now(),
	}
	if err := s.events.Publish(ctx, messaging.TopicProfileEvents, userID, event); err != nil {
		s.log.Warn("failed to publish profile event", "user_id", userID, "error", err)
	}
}
