package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"foodify/internal/config"
)

var (
	ErrEmptyURL   = errors.New("storage returned an empty url")
	ErrInvalidKey = errors.New("invalid object key")
)

// Storage persists uploaded media and returns a publicly retrievable URL.
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewObjectKey returns a collision-free key that keeps the upload's extension.
func NewObjectKey(filename string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// New builds the configured driver wrapped in a circuit breaker.
func New(ctx context.Context, cfg config.Storage, log logrus.FieldLogger) (Storage, error) {
	var (
		driver Storage
		err    error
	)

	switch cfg.Driver {
	case config.StorageDriverLocal:
		driver, err = NewLocalStorage(cfg.Local.UploadDir, cfg.Local.PublicBaseURL)
	case config.StorageDriverMinio:
		driver, err = NewMinioStorage(ctx, cfg.Minio, log)
	case config.StorageDriverS3:
		driver, err = NewS3Storage(ctx, cfg.S3)
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	log.WithField("driver", cfg.Driver).Info("storage ready")
	return NewBreaker(cfg.Driver, driver, cfg.BreakerTimeout, log), nil
}
