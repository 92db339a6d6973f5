package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"foodify/internal/database"
	"foodify/internal/models"
)

type FoodPartnerRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewFoodPartnerRepository(db *mongo.Database) *FoodPartnerRepository {
	return &FoodPartnerRepository{coll: db.Collection(database.FoodPartnersCollection), now: time.Now}
}

func (r *FoodPartnerRepository) Create(ctx context.Context, partner *models.FoodPartner) error {
	now := r.now().UTC()
	partner.ID = primitive.NewObjectID()
	partner.CreatedAt = now
	partner.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, partner)
	return mapWriteError(err)
}

func (r *FoodPartnerRepository) FindByEmail(ctx context.Context, email string) (*models.FoodPartner, error) {
	var partner models.FoodPartner
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&partner); err != nil {
		return nil, mapFindError(err)
	}
	return &partner, nil
}

func (r *FoodPartnerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.FoodPartner, error) {
	var partner models.FoodPartner
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&partner); err != nil {
		return nil, mapFindError(err)
	}
	return &partner, nil
}
