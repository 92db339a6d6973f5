package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors of the API.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AuthAttemptsTotal *prometheus.CounterVec

	FoodsCreatedTotal prometheus.Counter
	UploadBytes       prometheus.Histogram
	TogglesTotal      *prometheus.CounterVec
	FeedCacheTotal    *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Time taken to serve HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_attempts_total",
				Help: "Register and login attempts by account role and outcome",
			},
			[]string{"role", "action", "result"},
		),
		FoodsCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "foods_created_total",
				Help: "Total number of food items published",
			},
		),
		UploadBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "food_video_upload_bytes",
				Help:    "Size of uploaded food videos",
				Buckets: prometheus.ExponentialBuckets(1<<20, 2, 8),
			},
		),
		TogglesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "food_toggles_total",
				Help: "Like and save toggles by resulting state",
			},
			[]string{"kind", "state"},
		),
		FeedCacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feed_cache_requests_total",
				Help: "Feed cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// Nop returns collectors registered nowhere.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}
