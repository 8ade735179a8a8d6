package services

import (
	"context"
	"errors"
	"fmt"
	"golang-storefront-backend/internal/models"
	"golang-storefront-backend/internal/repositories"
	"golang-storefront-backend/pkg/logger"
	"golang-storefront-backend/pkg/storage"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// weekdays maps time.Weekday to the keys of a store schedule.
var weekdays = map[time.Weekday]string{
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miercoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sabado",
	time.Sunday:    "domingo",
}

type StoreService struct {
	storeRepo repositories.StoreRepository
	profiles  *ProfileService
	storage   ImageStorage
	log       *logger.Logger
}

func NewStoreService(
	storeRepo repositories.StoreRepository,
	profiles *ProfileService,
	storage ImageStorage,
	log *logger.Logger,
) *StoreService {
	return &StoreService{
		storeRepo: storeRepo,
		profiles:  profiles,
		storage:   storage,
		log:       log,
	}
}

type CreateStoreRequest struct {
	Name        string                `json:"nombre" binding:"required"`
	Description string                `json:"descripcion"`
	Location    string                `json:"ubicacion"`
	RFC         string                `json:"rfc"`
	ImageURL    string                `json:"imagen_url"`
	Schedule    models.WeeklySchedule `json:"horario"`
	CategoryID  string                `json:"categoria_id"`
}

type UpdateStoreRequest struct {
	Name        *string               `json:"nombre" binding:"omitempty,min=1"`
	Description *string               `json:"descripcion"`
	Location    *string               `json:"ubicacion"`
	RFC         *string               `json:"rfc"`
	Schedule    models.WeeklySchedule `json:"horario"`
}

type StoreListResponse struct {
	Stores []models.Store `json:"stores"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// StoreResponse is a store together with its opening state at request time.
type StoreResponse struct {
	models.Store
	IsOpen bool `json:"is_open"`
}

// CreateStore registers a comercio owned by the caller and promotes the caller
// to comerciante.
func (s *StoreService) CreateStore(ctx context.Context, ownerID string, req *CreateStoreRequest) (*models.Store, error) {
	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	if err := validateSchedule(req.Schedule); err != nil {
		return nil, err
	}

	var category *models.StoreCategory
	if req.CategoryID != "" {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return nil, ErrCategoryNotFound
		}
		category, err = s.storeRepo.GetCategoryByID(ctx, categoryID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
	}

	store := &models.Store{
		ID:          uuid.New(),
		OwnerID:     ownerUUID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Location:    req.Location,
		RFC:         strings.ToUpper(strings.TrimSpace(req.RFC)),
		ImageURL:    req.ImageURL,
		Schedule:    req.Schedule,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.storeRepo.Create(ctx, store); err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	if category != nil {
		if err := s.storeRepo.AssignCategory(ctx, store.ID, category.ID); err != nil {
			return nil, fmt.Errorf("assign category: %w", err)
		}
		store.Categories = []models.StoreCategory{*category}
	}

	if err := s.profiles.SetRole(ctx, ownerUUID, models.RoleMerchant); err != nil {
		s.log.Error("failed to promote store owner", "user_id", ownerID, "store_id", store.ID.String(), "error", err)
	}

	s.log.Info("store created", "store_id", store.ID.String(), "owner_id", ownerID)
	return store, nil
}

func (s *StoreService) ListStores(ctx context.Context, search string, limit, offset int) (*StoreListResponse, error) {
	stores, total, err := s.storeRepo.Search(ctx, strings.TrimSpace(search), limit, offset)
	if err != nil {
		return nil, err
	}

	return &StoreListResponse{
		Stores: stores,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (s *StoreService) GetStore(ctx context.Context, storeID string) (*StoreResponse, error) {
	store, err := s.getStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	return &StoreResponse{Store: *store, IsOpen: IsOpenAt(store, time.Now())}, nil
}

func (s *StoreService) ListStoresByOwner(ctx context.Context, ownerID string) ([]models.Store, error) {
	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	return s.storeRepo.GetByOwnerID(ctx, ownerUUID)
}

func (s *StoreService) UpdateStore(ctx context.Context, ownerID, storeID string, req *UpdateStoreRequest) (*models.Store, error) {
	store, err := s.ownedStore(ctx, ownerID, storeID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		store.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		store.Description = *req.Description
	}
	if req.Location != nil {
		store.Location = *req.Location
	}
	if req.RFC != nil {
		store.RFC = strings.ToUpper(strings.TrimSpace(*req.RFC))
	}
	if req.Schedule != nil {
		if err := validateSchedule(req.Schedule); err != nil {
			return nil, err
		}
		store.Schedule = req.Schedule
	}
	store.UpdatedAt = time.Now()

	if err := s.storeRepo.Update(ctx, store); err != nil {
		return nil, fmt.Errorf("update store: %w", err)
	}

	return store, nil
}

func (s *StoreService) ListCategories(ctx context.Context) ([]models.StoreCategory, error) {
	return s.storeRepo.ListCategories(ctx)
}

func (s *StoreService) AssignCategory(ctx context.Context, ownerID, storeID, categoryID string) error {
	store, err := s.ownedStore(ctx, ownerID, storeID)
	if err != nil {
		return err
	}

	categoryUUID, err := uuid.Parse(categoryID)
	if err != nil {
		return ErrCategoryNotFound
	}
	if _, err := s.storeRepo.GetCategoryByID(ctx, categoryUUID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	return s.storeRepo.AssignCategory(ctx, store.ID, categoryUUID)
}

// UploadStoreImage stores the image at comercios/<owner>/<unix ms>.<ext> and
// sets it as the store image.
func (s *StoreService) UploadStoreImage(ctx context.Context, ownerID, storeID, filename string, r io.Reader) (*models.Store, error) {
	store, err := s.ownedStore(ctx, ownerID, storeID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrInvalidImage
	}

	key := fmt.Sprintf("comercios/%s/%d.%s", store.OwnerID.String(), time.Now().UnixMilli(), storage.Extension(filename))
	url, err := s.storage.Upload(ctx, key, r)
	if err != nil {
		return nil, fmt.Errorf("upload store image: %w", err)
	}

	store.ImageURL = url
	store.UpdatedAt = time.Now()
	if err := s.storeRepo.Update(ctx, store); err != nil {
		return nil, fmt.Errorf("save store image: %w", err)
	}

	return store, nil
}

func (s *StoreService) getStore(ctx context.Context, storeID string) (*models.Store, error) {
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
	return store, nil
}

func (s *StoreService) ownedStore(ctx context.Context, ownerID, storeID string) (*models.Store, error) {
	store, err := s.getStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.OwnerID.String() != ownerID {
		return nil, ErrNotOwner
	}
	return store, nil
}

// ErrInvalidSchedule is returned for unknown weekdays or malformed HH:MM times.
var ErrInvalidSchedule = errors.New("invalid schedule")

func validateSchedule(schedule models.WeeklySchedule) error {
	known := make(map[string]bool, len(weekdays))
	for _, day := range weekdays {
		known[day] = true
	}

	for day, window := range schedule {
		if !known[day] {
			return fmt.Errorf("%w: unknown day %q", ErrInvalidSchedule, day)
		}
		if !window.Open {
			continue
		}
		start, err := time.Parse("15:04", window.Start)
		if err != nil {
			return fmt.Errorf("%w: %s inicio %q", ErrInvalidSchedule, day, window.Start)
		}
		end, err := time.Parse("15:04", window.End)
		if err != nil {
			return fmt.Errorf("%w: %s fin %q", ErrInvalidSchedule, day, window.End)
		}
		if !end.After(start) {
			return fmt.Errorf("%w: %s closes before it opens", ErrInvalidSchedule, day)
		}
		// stored zero padded, "9:00" becomes "09:00"
		window.Start = start.Format("15:04")
		window.End = end.Format("15:04")
		schedule[day] = window
	}
	return nil
}

// minuteOfDay parses HH:MM (hour may be unpadded) into minutes since midnight.
func minuteOfDay(hhmm string) (int, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// IsOpenAt reports whether the store schedule covers t. Stores without a
// schedule are always open; a day missing from the schedule is closed.
func IsOpenAt(store *models.Store, t time.Time) bool {
	if len(store.Schedule) == 0 {
		return true
	}

	window, ok := store.Schedule[weekdays[t.Weekday()]]
	if !ok || !window.Open {
		return false
	}

	if window.Start == "" || window.End == "" {
		return true
	}

	start, okStart := minuteOfDay(window.Start)
	end, okEnd := minuteOfDay(window.End)
	if !okStart || !okEnd {
		return false
	}

	current := t.Hour()*60 + t.Minute()
	return current >= start && current < end
}
