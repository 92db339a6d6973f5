package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"foodify/internal/database"
	"foodify/internal/models"
)

const (
	likeCountField  = "likeCount"
	savesCountField = "savesCount"
)

type FoodRepository struct {
	db    *mongo.Database
	foods *mongo.Collection
	likes *mongo.Collection
	saves *mongo.Collection
	now   func() time.Time
}

func NewFoodRepository(db *mongo.Database) *FoodRepository {
	return &FoodRepository{
		db:    db,
		foods: db.Collection(database.FoodsCollection),
		likes: db.Collection(database.LikesCollection),
		saves: db.Collection(database.SavesCollection),
		now:   time.Now,
	}
}

// Create inserts a new item with zeroed counters.
func (r *FoodRepository) Create(ctx context.Context, food *models.Food) error {
	now := r.now().UTC()
	food.ID = primitive.NewObjectID()
	food.LikeCount = 0
	food.SavesCount = 0
	food.CreatedAt = now
	food.UpdatedAt = now

	_, err := r.foods.InsertOne(ctx, food)
	return mapWriteError(err)
}

// List returns every item, newest first.
func (r *FoodRepository) List(ctx context.Context) ([]models.Food, error) {
	return r.find(ctx, bson.M{})
}

func (r *FoodRepository) ListByPartner(ctx context.Context, partnerID primitive.ObjectID) ([]models.Food, error) {
	return r.find(ctx, bson.M{"foodPartner": partnerID})
}

func (r *FoodRepository) find(ctx context.Context, filter bson.M) ([]models.Food, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.foods.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	foods := make([]models.Food, 0)
	if err := cursor.All(ctx, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}

// ToggleLike flips the like relation for (userID, foodID) and reports
// whether the pair is liked afterwards.
func (r *FoodRepository) ToggleLike(ctx context.Context, userID, foodID primitive.ObjectID) (bool, error) {
	return r.toggle(ctx, r.likes, likeCountField, userID, foodID, func(at time.Time) interface{} {
		return models.Like{User: userID, Food: foodID, CreatedAt: at}
	})
}

// ToggleSave flips the save relation for (userID, foodID) and reports
// whether the pair is saved afterwards.
func (r *FoodRepository) ToggleSave(ctx context.Context, userID, foodID primitive.ObjectID) (bool, error) {
	return r.toggle(ctx, r.saves, savesCountField, userID, foodID, func(at time.Time) interface{} {
		return models.Save{User: userID, Food: foodID, CreatedAt: at}
	})
}

// toggle deletes the relation when present and inserts it otherwise, moving
// the food counter in the same transaction. The unique (user, food) index
// turns a lost insert race into errRelationExists, which leaves the pair in
// the "on" state without a second increment.
func (r *FoodRepository) toggle(ctx context.Context, relations *mongo.Collection, counter string, userID, foodID primitive.ObjectID, relation func(at time.Time) interface{}) (bool, error) {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return false, err
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		exists, err := r.foods.CountDocuments(sessCtx, bson.M{"_id": foodID}, options.Count().SetLimit(1))
		if err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, ErrNotFound
		}

		deleted, err := relations.DeleteOne(sessCtx, bson.M{"user": userID, "food": foodID})
		if err != nil {
			return nil, err
		}
		if deleted.DeletedCount > 0 {
			_, err := r.foods.UpdateOne(sessCtx,
				bson.M{"_id": foodID, counter: bson.M{"$gt": 0}},
				bson.M{"$inc": bson.M{counter: -1}},
			)
			return false, err
		}

		_, err = relations.InsertOne(sessCtx, relation(r.now().UTC()))
		if mongo.IsDuplicateKeyError(err) {
			return nil, errRelationExists
		}
		if err != nil {
			return nil, err
		}

		_, err = r.foods.UpdateOne(sessCtx, bson.M{"_id": foodID}, bson.M{"$inc": bson.M{counter: 1}})
		return true, err
	})
	if errors.Is(err, errRelationExists) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	on, _ := result.(bool)
	return on, nil
}

// ListSaved returns the user's saves, newest first, each joined with its
// food. Saves whose food no longer exists are dropped.
func (r *FoodRepository) ListSaved(ctx context.Context, userID primitive.ObjectID) ([]models.SavedFood, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         database.FoodsCollection,
			"localField":   "food",
			"foreignField": "_id",
			"as":           "food",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$food", "preserveNullAndEmptyArrays": false}}},
	}

	cursor, err := r.saves.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	saved := make([]models.SavedFood, 0)
	if err := cursor.All(ctx, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}
