package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"foodify/internal/config"
	"foodify/internal/models"
)

var (
	ErrCacheMiss     = errors.New("cache miss")
	ErrCacheDisabled = errors.New("cache disabled")
	// ErrStaleFeed is returned by SetFeed when the feed was invalidated
	// after the caller read the generation.
	ErrStaleFeed = errors.New("feed changed while loading")
)

const (
	feedKey           = "feed:all"
	feedGenerationKey = "feed:generation"
)

// FeedCache keeps the serialized public feed in Redis for a short TTL.
// A disabled cache answers every read with ErrCacheDisabled.
type FeedCache struct {
	client  *redis.Client
	enabled bool
	ttl     time.Duration
	logger  logrus.FieldLogger
}

func NewFeedCache(cfg config.Redis, ttl time.Duration, logger logrus.FieldLogger) (*FeedCache, error) {
	if !cfg.Enabled {
		logger.Info("feed cache is disabled")
		return Disabled(logger), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.WithFields(logrus.Fields{"addr": cfg.Addr, "db": cfg.DB, "ttl": ttl}).Info("feed cache connected")
	return newFeedCache(client, ttl, logger), nil
}

func newFeedCache(client *redis.Client, ttl time.Duration, logger logrus.FieldLogger) *FeedCache {
	return &FeedCache{client: client, enabled: true, ttl: ttl, logger: logger}
}

func Disabled(logger logrus.FieldLogger) *FeedCache {
	return &FeedCache{logger: logger}
}

func (c *FeedCache) IsEnabled() bool {
	return c != nil && c.enabled
}

func (c *FeedCache) Close() error {
	if !c.IsEnabled() {
		return nil
	}
	return c.client.Close()
}

func (c *FeedCache) GetFeed(ctx context.Context) ([]models.Food, error) {
	if !c.IsEnabled() {
		return nil, ErrCacheDisabled
	}

	data, err := c.client.Get(ctx, feedKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var foods []models.Food
	if err := json.Unmarshal(data, &foods); err != nil {
		c.logger.WithError(err).Warn("dropping corrupted feed cache entry")
		c.client.Del(ctx, feedKey)
		return nil, ErrCacheMiss
	}
	return foods, nil
}

// Generation returns the current feed generation. Read it before loading the
// feed from the database and hand it back to SetFeed.
func (c *FeedCache) Generation(ctx context.Context) (int64, error) {
	if !c.IsEnabled() {
		return 0, ErrCacheDisabled
	}
	return generation(ctx, c.client)
}

// SetFeed stores foods only if no invalidation happened since gen was read.
func (c *FeedCache) SetFeed(ctx context.Context, gen int64, foods []models.Food) error {
	if !c.IsEnabled() {
		return ErrCacheDisabled
	}

	data, err := json.Marshal(foods)
	if err != nil {
		return err
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := generation(ctx, tx)
		if err != nil {
			return err
		}
		if current != gen {
			return ErrStaleFeed
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, feedKey, data, c.ttl)
			return nil
		})
		return err
	}, feedGenerationKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStaleFeed
	}
	return err
}

// InvalidateFeed drops the cached feed after any write that changes it and
// bumps the generation so in-flight loads cannot store an older snapshot.
func (c *FeedCache) InvalidateFeed(ctx context.Context) error {
	if !c.IsEnabled() {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, feedGenerationKey)
		pipe.Del(ctx, feedKey)
		return nil
	})
	return err
}

func generation(ctx context.Context, r redis.Cmdable) (int64, error) {
	gen, err := r.Get(ctx, feedGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}
