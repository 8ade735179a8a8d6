package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"golang-storefront-backend/internal/models"
	"golang-storefront-backend/pkg/logger"
	"golang-storefront-backend/pkg/messaging"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileFixture struct {
	svc     *ProfileService
	repo    *fakeProfileRepo
	cache   *fakeCache
	storage *fakeStorage
	events  *fakePublisher
	profile *models.Profile
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()
	f := &profileFixture{
		repo:    newFakeProfileRepo(),
		cache:   newFakeCache(),
		storage: &fakeStorage{},
		events:  &fakePublisher{},
		profile: &models.Profile{
			ID:       uuid.New(),
			Email:    "ana@example.com",
			Username: "ana",
			Name:     "Ana",
			Role:     models.RoleCustomer,
			Status:   "active",
		},
	}
	require.NoError(t, f.repo.Create(context.Background(), f.profile))
	f.svc = NewProfileService(f.repo, f.cache, f.storage, f.events, logger.NewNop())
	return f
}

func TestGetProfileFillsCache(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	id := f.profile.ID.String()

	got, err := f.svc.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.True(t, f.cache.has(profileCacheKey(id)))

	// served from cache even if the row changes underneath
	f.repo.profiles[f.profile.ID].Name = "Changed"
	got, err = f.svc.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)

	_, err = f.svc.GetProfile(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestUpdateProfileEvictsAndPublishes(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	id := f.profile.ID.String()

	_, err := f.svc.GetProfile(ctx, id)
	require.NoError(t, err)

	name := " Ana Maria "
	age := 31
	location := "Guadalajara"
	updated, err := f.svc.UpdateProfile(ctx, id, &UpdateProfileRequest{
		Name:     &name,
		Age:      &age,
		Location: &location,
	})
	require.NoError(t, err)

	assert.Equal(t, "Ana Maria", updated.Name)
	require.NotNil(t, updated.Age)
	assert.Equal(t, 31, *updated.Age)
	assert.Equal(t, "Guadalajara", updated.Location)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, messaging.TopicProfileEvents, f.events.events[0].topic)
	assert.Equal(t, id, f.events.events[0].key)
	event, ok := f.events.events[0].value.(messaging.ProfileEvent)
	require.True(t, ok)
	assert.Equal(t, messaging.EventProfileUpdated, event.Type)
}

func TestUpdateProfileUsernameTaken(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Create(ctx, &models.Profile{ID: uuid.New(), Username: "beto"}))

	username := "beto"
	_, err := f.svc.UpdateProfile(ctx, f.profile.ID.String(), &UpdateProfileRequest{Username: &username})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.Empty(t, f.events.events)
}

func TestHandleProfileEventEvictsCache(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	id := f.profile.ID.String()

	_, err := f.svc.GetProfile(ctx, id)
	require.NoError(t, err)
	require.True(t, f.cache.has(profileCacheKey(id)))

	payload, err := json.Marshal(messaging.ProfileEvent{Type: messaging.EventProfileUpdated, UserID: id})
	require.NoError(t, err)
	require.NoError(t, f.svc.HandleProfileEvent(ctx, payload))
	assert.False(t, f.cache.has(profileCacheKey(id)))

	assert.Error(t, f.svc.HandleProfileEvent(ctx, []byte("{not json")))
}

func TestUploadAvatar(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	id := f.profile.ID.String()

	updated, err := f.svc.UploadAvatar(ctx, id, "me.webp", strings.NewReader("image"))
	require.NoError(t, err)

	wantKey := "profiles/" + id + "/avatar.webp"
	assert.Equal(t, []string{wantKey}, f.storage.keys)
	assert.Equal(t, []byte("image"), f.storage.body[wantKey])
	assert.Equal(t, "https://cdn.test/"+wantKey, updated.ImageURL)

	_, err = f.svc.UploadAvatar(ctx, id, "me.webp", nil)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestSetRole(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.SetRole(ctx, f.profile.ID, "superuser"), ErrInvalidRole)
	assert.ErrorIs(t, f.svc.SetRole(ctx, uuid.New(), models.RoleMerchant), ErrProfileNotFound)

	require.NoError(t, f.svc.SetRole(ctx, f.profile.ID, models.RoleMerchant))
	got, err := f.svc.GetProfile(ctx, f.profile.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.RoleMerchant, got.Role)
}
