package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Offer kinds
const (
	OfferProduct = "producto"
	OfferService = "servicio"
)

// Offer model - MongoDB (flexible catalog data). Products and services sold
// by a store.
type Offer struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StoreID     string             `bson:"store_id" json:"store_id"`
	Kind        string             `bson:"kind" json:"kind"` // producto, servicio
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Stock       *int               `bson:"stock,omitempty" json:"stock"`
	ImageUrls   []string           `bson:"image_urls" json:"image_urls"`
	IsAvailable bool               `bson:"is_available" json:"is_available"`
	Tags        []string           `bson:"tags" json:"tags"`
	Duration    int                `bson:"duration_minutes,omitempty" json:"duration_minutes,omitempty"` // services only
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// PrimaryImage returns the first image url or "".
func (o *Offer) PrimaryImage() string {
	if len(o.ImageUrls) == 0 {
		return ""
	}
	return o.ImageUrls[0]
}
