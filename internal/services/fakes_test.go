package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"golang-storefront-backend/internal/models"
	"golang-storefront-backend/internal/repositories"
	"golang-storefront-backend/pkg/cache"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = b
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	b, ok := f.data[key]
	f.mu.Unlock()
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(b, dest)
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

type publishedEvent struct {
	topic string
	key   string
	value interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, topic, key string, value interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, publishedEvent{topic: topic, key: key, value: value})
	return nil
}

type fakeStorage struct {
	keys []string
	body map[string][]byte
}

func (f *fakeStorage) Upload(_ context.Context, key string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	if f.body == nil {
		f.body = map[string][]byte{}
	}
	f.keys = append(f.keys, key)
	f.body[key] = buf.Bytes()
	return "https://cdn.test/" + key, nil
}

type fakeSessions struct {
	ended []string
}

func (f *fakeSessions) EndSession(userID string) {
	f.ended = append(f.ended, userID)
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[uuid.UUID]*models.Profile{}}
}

func (f *fakeProfileRepo) Create(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.profiles[p.ID] = &cp
	return nil
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if strings.EqualFold(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeProfileRepo) GetByUsername(_ context.Context, username string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeProfileRepo) Update(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.profiles[p.ID] = &cp
	return nil
}

func (f *fakeProfileRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = v.(string)
		case "username":
			p.Username = v.(string)
		case "age":
			age := v.(int)
			p.Age = &age
		case "location":
			p.Location = v.(string)
		case "bank_account":
			p.BankAccount = v.(string)
		case "image_url":
			p.ImageURL = v.(string)
		case "role":
			p.Role = v.(string)
		case "updated_at":
			p.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

type fakeStoreRepo struct {
	mu         sync.Mutex
	stores     map[uuid.UUID]*models.Store
	categories map[uuid.UUID]*models.StoreCategory
}

func newFakeStoreRepo() *fakeStoreRepo {
	return &fakeStoreRepo{
		stores:     map[uuid.UUID]*models.Store{},
		categories: map[uuid.UUID]*models.StoreCategory{},
	}
}

func (f *fakeStoreRepo) add(owner uuid.UUID, name string) *models.Store {
	s := &models.Store{ID: uuid.New(), OwnerID: owner, Name: name}
	f.mu.Lock()
	f.stores[s.ID] = s
	f.mu.Unlock()
	return s
}

func (f *fakeStoreRepo) Create(_ context.Context, s *models.Store) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.stores[s.ID] = &cp
	return nil
}

func (f *fakeStoreRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stores[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStoreRepo) Update(_ context.Context, s *models.Store) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.stores[s.ID] = &cp
	return nil
}

func (f *fakeStoreRepo) GetByOwnerID(_ context.Context, owner uuid.UUID) ([]models.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Store
	for _, s := range f.stores {
		if s.OwnerID == owner {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStoreRepo) Search(_ context.Context, query string, limit, offset int) ([]models.Store, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Store
	for _, s := range f.stores {
		if query == "" || strings.Contains(strings.ToLower(s.Name), strings.ToLower(query)) {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeStoreRepo) ListCategories(_ context.Context) ([]models.StoreCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.StoreCategory
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStoreRepo) GetCategoryByID(_ context.Context, id uuid.UUID) (*models.StoreCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStoreRepo) AssignCategory(_ context.Context, storeID, categoryID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stores[storeID]
	if !ok {
		return repositories.ErrNotFound
	}
	s.Categories = append(s.Categories, *f.categories[categoryID])
	return nil
}

type fakeOfferRepo struct {
	mu     sync.Mutex
	offers map[primitive.ObjectID]*models.Offer
	calls  int
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{offers: map[primitive.ObjectID]*models.Offer{}}
}

func (f *fakeOfferRepo) add(storeID, kind, name string, price float64) *models.Offer {
	o := &models.Offer{
		ID:          primitive.NewObjectID(),
		StoreID:     storeID,
		Kind:        kind,
		Name:        name,
		Price:       price,
		IsAvailable: true,
		ImageUrls:   []string{"https://img.test/" + name + ".jpg"},
	}
	f.mu.Lock()
	f.offers[o.ID] = o
	f.mu.Unlock()
	return o
}

func (f *fakeOfferRepo) Create(_ context.Context, o *models.Offer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = primitive.NewObjectID()
	cp := *o
	f.offers[o.ID] = &cp
	return nil
}

func (f *fakeOfferRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOfferRepo) Update(_ context.Context, o *models.Offer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.offers[o.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *o
	f.offers[o.ID] = &cp
	return nil
}

func (f *fakeOfferRepo) GetByStoreID(_ context.Context, storeID, kind string, limit, offset int) ([]models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.page(storeID, kind, false, limit, offset), nil
}

func (f *fakeOfferRepo) GetAllByStoreID(_ context.Context, storeID, kind string, limit, offset int) ([]models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page(storeID, kind, true, limit, offset), nil
}

// page returns the matching offers in id order, so pages are stable.
func (f *fakeOfferRepo) page(storeID, kind string, includeUnavailable bool, limit, offset int) []models.Offer {
	out := []models.Offer{}
	for _, o := range f.offers {
		if o.StoreID == storeID && (includeUnavailable || o.IsAvailable) && (kind == "" || o.Kind == kind) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0 })
	return paginate(out, limit, offset)
}

func (f *fakeOfferRepo) Search(_ context.Context, kind, query string, limit, offset int) ([]models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Offer{}
	for _, o := range f.offers {
		if o.IsAvailable && (kind == "" || o.Kind == kind) && strings.Contains(o.Name, query) {
			out = append(out, *o)
		}
	}
	return out, nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders []*models.Order
	err    error
}

func (f *fakeOrderRepo) CreateCheckout(_ context.Context, orders []*models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.orders = append(f.orders, orders...)
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeOrderRepo) GetByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

type fakeAddressRepo struct {
	mu        sync.Mutex
	addresses map[uuid.UUID]*models.Address
}

func newFakeAddressRepo() *fakeAddressRepo {
	return &fakeAddressRepo{addresses: map[uuid.UUID]*models.Address{}}
}

func (f *fakeAddressRepo) Create(_ context.Context, a *models.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.addresses[a.ID] = &cp
	return nil
}

func (f *fakeAddressRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.addresses[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAddressRepo) GetByUserID(_ context.Context, userID uuid.UUID, offset, limit int) ([]models.Address, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Address
	for _, a := range f.addresses {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeAddressRepo) Update(_ context.Context, a *models.Address) error {
	return f.Create(context.Background(), a)
}

func (f *fakeAddressRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.addresses, id)
	return nil
}

func (f *fakeAddressRepo) UnsetDefaultAddresses(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.addresses {
		if a.UserID == userID {
			a.IsDefault = false
		}
	}
	return nil
}

var errBoom = errors.New("boom")
