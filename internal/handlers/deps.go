package handlers

import (
	"context"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodify/internal/auth"
	"foodify/internal/models"
)

// The interfaces below are satisfied by the repository, storage, cache and
// auth packages and by the in-memory fakes in the tests.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type FoodPartnerStore interface {
	Create(ctx context.Context, partner *models.FoodPartner) error
	FindByEmail(ctx context.Context, email string) (*models.FoodPartner, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.FoodPartner, error)
}

type FoodStore interface {
	Create(ctx context.Context, food *models.Food) error
	List(ctx context.Context) ([]models.Food, error)
	ListByPartner(ctx context.Context, partnerID primitive.ObjectID) ([]models.Food, error)
	ToggleLike(ctx context.Context, userID, foodID primitive.ObjectID) (bool, error)
	ToggleSave(ctx context.Context, userID, foodID primitive.ObjectID) (bool, error)
	ListSaved(ctx context.Context, userID primitive.ObjectID) ([]models.SavedFood, error)
}

type MediaStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// FeedCache stores the public feed. SetFeed must refuse a snapshot whose
// generation was superseded by an InvalidateFeed.
type FeedCache interface {
	GetFeed(ctx context.Context) ([]models.Food, error)
	Generation(ctx context.Context) (int64, error)
	SetFeed(ctx context.Context, gen int64, foods []models.Food) error
	InvalidateFeed(ctx context.Context) error
}

type TokenIssuer interface {
	Ready() error
	Issue(accountID primitive.ObjectID, role auth.Role) (string, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

const requestTimeout = 5 * time.Second
