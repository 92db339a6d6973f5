package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"foodify/internal/apperr"
	"foodify/internal/auth"
	"foodify/internal/cache"
	"foodify/internal/config"
	"foodify/internal/database"
	"foodify/internal/handlers"
	"foodify/internal/logger"
	"foodify/internal/metrics"
	"foodify/internal/middleware"
	"foodify/internal/repository"
	"foodify/internal/storage"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("refusing to start")
	}

	apperr.ExposeInternalDetails(!cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	client, err := database.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		log.WithError(err).Fatal("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.WithError(err).Warn("mongodb disconnect failed")
		}
	}()

	if err := database.RequireTransactions(ctx, client); err != nil {
		log.WithError(err).Fatal("mongodb deployment not usable")
	}

	db := client.Database(cfg.Mongo.DBName)
	log.WithField("database", db.Name()).Info("mongodb connected")

	if err := database.EnsureIndexes(ctx, db, logger.Component(log, "indexes")); err != nil {
		log.WithError(err).Fatal("index setup failed")
	}

	store, err := storage.New(ctx, cfg.Storage, logger.Component(log, "storage"))
	if err != nil {
		log.WithError(err).Fatal("storage setup failed")
	}

	feed, err := cache.NewFeedCache(cfg.Redis, cfg.Feed.CacheTTL, logger.Component(log, "cache"))
	if err != nil {
		log.WithError(err).Warn("feed cache unavailable, serving from mongodb")
		feed = cache.Disabled(logger.Component(log, "cache"))
	}
	defer feed.Close()

	m := metrics.New(prometheus.DefaultRegisterer)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	users := repository.NewUserRepository(db)
	partners := repository.NewFoodPartnerRepository(db)
	foods := repository.NewFoodRepository(db)
	pinger := handlers.PingFunc(func(ctx context.Context) error { return database.Ping(ctx, client) })

	r := gin.New()
	r.Use(middleware.Global(log, m, cfg.HTTP.CORSAllowedOrigins)...)

	if b, ok := store.(*storage.Breaker); ok {
		if local, ok := b.Unwrap().(*storage.LocalStorage); ok {
			r.Static(local.PublicPath(), local.Dir())
		}
	}

	r.GET("/health", handlers.Health(pinger))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.Register(r, handlers.Routes{
		Auth: handlers.AuthDeps{
			Users:     users,
			Partners:  partners,
			Tokens:    tokens,
			Passwords: auth.NewPasswordHasher(cfg.Auth.BcryptCost),
			DB:        pinger,
			Cookie: auth.CookieConfig{
				MaxAge: cfg.Auth.SessionTTL,
				Secure: cfg.Auth.CookieSecure,
			},
			Metrics: m,
		},
		Food: handlers.FoodDeps{
			Foods:                foods,
			Storage:              store,
			Cache:                feed,
			Metrics:              m,
			MaxVideoSize:         cfg.Storage.MaxVideoSize,
			SavedEmptyAsNotFound: cfg.Feed.SavedEmptyAsNotFound,
		},
		Tokens:      tokens,
		Users:       users,
		Partners:    partners,
		AuthLimiter: middleware.NewIPRateLimiter(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst),
	})

	serve(log, r, cfg.HTTP)
}

func serve(log *logrus.Logger, handler http.Handler, cfg config.HTTP) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.WithField("signal", sig.String()).Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
