package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("storage temporarily unavailable")

// Breaker stops calling a failing backend until it has had time to recover.
type Breaker struct {
	next Storage
	cb   *gobreaker.CircuitBreaker
}

func NewBreaker(name string, next Storage, timeout time.Duration, log logrus.FieldLogger) *Breaker {
	settings := gobreaker.Settings{
		Name:        "storage-" + name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"circuit_breaker": name,
				"from_state":      from.String(),
				"to_state":        to.String(),
			}).Warn("circuit breaker state changed")
		},
		// Bad keys and cancelled requests say nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrInvalidKey) || errors.Is(err, context.Canceled)
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *Breaker) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Upload(ctx, key, body, size, contentType)
	})
	if err != nil {
		return "", mapBreakerError(err)
	}
	url, _ := out.(string)
	if url == "" {
		return "", ErrEmptyURL
	}
	return url, nil
}

func (b *Breaker) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return mapBreakerError(err)
}

// Unwrap exposes the wrapped driver.
func (b *Breaker) Unwrap() Storage {
	return b.next
}

func mapBreakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrUnavailable
	}
	return err
}
