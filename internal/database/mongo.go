package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	UsersCollection        = "users"
	FoodPartnersCollection = "foodpartners"
	FoodsCollection        = "foods"
	LikesCollection        = "likes"
	SavesCollection        = "saves"
)

var (
	ErrMissingURI = errors.New("mongodb uri is empty")
	// ErrTransactionsUnsupported means the server is a standalone mongod.
	// Like and save toggles need a replica set or a mongos router.
	ErrTransactionsUnsupported = errors.New("mongodb deployment does not support transactions (need a replica set or mongos)")
)

// Connect dials the cluster and pings the primary before returning.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, ErrMissingURI
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Ping checks the primary is reachable within a short deadline.
func Ping(ctx context.Context, client *mongo.Client) error {
	if client == nil {
		return errors.New("mongodb client is nil")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return client.Ping(pingCtx, readpref.Primary())
}

type helloReply struct {
	SetName string `bson:"setName"`
	Msg     string `bson:"msg"`
}

func (h helloReply) supportsTransactions() bool {
	return h.SetName != "" || h.Msg == "isdbgrid"
}

// RequireTransactions asks the server for its topology and fails when it is
// a standalone node.
func RequireTransactions(ctx context.Context, client *mongo.Client) error {
	helloCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var reply helloReply
	if err := client.Database("admin").RunCommand(helloCtx, bson.D{{Key: "hello", Value: 1}}).Decode(&reply); err != nil {
		return fmt.Errorf("hello command failed: %w", err)
	}
	if !reply.supportsTransactions() {
		return ErrTransactionsUnsupported
	}
	return nil
}
