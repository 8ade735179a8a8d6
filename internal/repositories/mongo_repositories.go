package repositories

import (
	"context"
	"errors"
	"golang-storefront-backend/internal/models"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Offer Repository
type offerRepository struct {
	collection *mongo.Collection
}

func NewOfferRepository(db *mongo.Database) OfferRepository {
	return &offerRepository{
		collection: db.Collection("ofertas"),
	}
}

// EnsureOfferIndexes creates the indexes the catalog queries rely on.
func EnsureOfferIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("ofertas").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "store_id", Value: 1}, {Key: "kind", Value: 1}}},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "is_available", Value: 1}}},
	})
	return err
}

func (r *offerRepository) Create(ctx context.Context, offer *models.Offer) error {
	offer.CreatedAt = time.Now()
	offer.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, offer)
	if err != nil {
		return err
	}
	offer.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *offerRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Offer, error) {
	var offer models.Offer
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&offer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepository) Update(ctx context.Context, offer *models.Offer) error {
	offer.UpdatedAt = time.Now()

	filter := bson.M{"_id": offer.ID}
	update := bson.M{"$set": offer}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *offerRepository) GetByStoreID(ctx context.Context, storeID, kind string, limit, offset int) ([]models.Offer, error) {
	filter := bson.M{"store_id": storeID, "is_available": true}
	if kind != "" {
		filter["kind"] = kind
	}
	return r.find(ctx, filter, limit, offset)
}

func (r *offerRepository) GetAllByStoreID(ctx context.Context, storeID, kind string, limit, offset int) ([]models.Offer, error) {
	filter := bson.M{"store_id": storeID}
	if kind != "" {
		filter["kind"] = kind
	}
	return r.find(ctx, filter, limit, offset)
}

func (r *offerRepository) Search(ctx context.Context, kind, query string, limit, offset int) ([]models.Offer, error) {
	filter := bson.M{"is_available": true}
	if kind != "" {
		filter["kind"] = kind
	}
	if query != "" {
		pattern := regexp.QuoteMeta(query)
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
			{"tags": bson.M{"$in": []string{query}}},
		}
	}
	return r.find(ctx, filter, limit, offset)
}

func (r *offerRepository) find(ctx context.Context, filter bson.M, limit, offset int) ([]models.Offer, error) {
	offers := []models.Offer{}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &offers); err != nil {
		return nil, err
	}

	return offers, nil
}
