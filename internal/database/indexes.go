package database

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type indexSpec struct {
	collection string
	model      mongo.IndexModel
}

func indexSpecs() []indexSpec {
	return []indexSpec{
		{
			collection: UsersCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("email_unique").SetUnique(true),
			},
		},
		{
			collection: FoodPartnersCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("email_unique").SetUnique(true),
			},
		},
		{
			collection: FoodsCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "foodPartner", Value: 1}},
				Options: options.Index().SetName("foodPartner_index"),
			},
		},
		{
			collection: FoodsCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("createdAt_desc"),
			},
		},
		{
			collection: LikesCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "user", Value: 1}, {Key: "food", Value: 1}},
				Options: options.Index().SetName("user_food_unique").SetUnique(true),
			},
		},
		{
			collection: SavesCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "user", Value: 1}, {Key: "food", Value: 1}},
				Options: options.Index().SetName("user_food_unique").SetUnique(true),
			},
		},
		{
			collection: SavesCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("user_createdAt"),
			},
		},
	}
}

// EnsureIndexes creates every index the repositories rely on. The unique
// (user, food) indexes back the one-like-per-pair guarantee.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log logrus.FieldLogger) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, spec := range indexSpecs() {
		name := *spec.model.Options.Name
		entry := log.WithFields(logrus.Fields{"collection": spec.collection, "index": name})

		if _, err := db.Collection(spec.collection).Indexes().CreateOne(ctx, spec.model); err != nil {
			entry.WithError(err).Error("index creation failed")
			return err
		}
		entry.Debug("index ensured")
	}
	return nil
}
