package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// ErrInvalidConfig is returned by Validate when the process cannot serve
// requests safely.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	StorageDriverLocal = "local"
	StorageDriverMinio = "minio"
	StorageDriverS3    = "s3"
)

type (
	Config struct {
		HTTP
		Mongo
		Auth
		Storage
		Redis
		Feed
		Environment string
		LogLevel    string
	}

	HTTP struct {
		Port               string
		CORSAllowedOrigins []string
		ShutdownTimeout    time.Duration
	}

	Mongo struct {
		URI    string
		DBName string
	}

	Auth struct {
		JWTSecret          string
		SessionTTL         time.Duration
		CookieSecure       bool
		BcryptCost         int
		RateLimitPerMinute int
		RateLimitBurst     int
	}

	Storage struct {
		Driver         string
		MaxVideoSize   int64
		BreakerTimeout time.Duration
		Local          LocalStorage
		Minio          MinioStorage
		S3             S3Storage
	}

	LocalStorage struct {
		UploadDir     string
		PublicBaseURL string
	}

	MinioStorage struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		Bucket    string
		UseSSL    bool
		PublicURL string
	}

	S3Storage struct {
		Region    string
		Bucket    string
		PublicURL string
	}

	Redis struct {
		Enabled  bool
		Addr     string
		Password string
		DB       int
	}

	Feed struct {
		CacheTTL             time.Duration
		SavedEmptyAsNotFound bool
	}
)

// Load reads .env (when present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug(".env not loaded")
	}

	v := newEnv()

	return Config{
		HTTP: HTTP{
			Port:               v.GetString("PORT"),
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			ShutdownTimeout:    v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Mongo: Mongo{
			URI:    strings.TrimSpace(v.GetString("MONGODB_URI")),
			DBName: strings.ToLower(strings.TrimSpace(v.GetString("DB_NAME"))),
		},
		Auth: Auth{
			JWTSecret:          strings.TrimSpace(v.GetString("JWT_SECRET")),
			SessionTTL:         v.GetDuration("SESSION_TTL"),
			CookieSecure:       v.GetBool("COOKIE_SECURE"),
			BcryptCost:         v.GetInt("BCRYPT_COST"),
			RateLimitPerMinute: v.GetInt("AUTH_RATE_LIMIT_PER_MINUTE"),
			RateLimitBurst:     v.GetInt("AUTH_RATE_LIMIT_BURST"),
		},
		Storage: Storage{
			Driver:         strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
			MaxVideoSize:   v.GetInt64("MAX_VIDEO_SIZE_MB") << 20,
			BreakerTimeout: v.GetDuration("STORAGE_BREAKER_TIMEOUT"),
			Local: LocalStorage{
				UploadDir:     v.GetString("UPLOAD_DIR"),
				PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
			},
			Minio: MinioStorage{
				Endpoint:  v.GetString("MINIO_ENDPOINT"),
				AccessKey: v.GetString("MINIO_ACCESS_KEY"),
				SecretKey: v.GetString("MINIO_SECRET_KEY"),
				Bucket:    v.GetString("MINIO_BUCKET"),
				UseSSL:    v.GetBool("MINIO_USE_SSL"),
				PublicURL: strings.TrimRight(v.GetString("MINIO_PUBLIC_URL"), "/"),
			},
			S3: S3Storage{
				Region:    v.GetString("S3_REGION"),
				Bucket:    v.GetString("S3_BUCKET"),
				PublicURL: strings.TrimRight(v.GetString("S3_PUBLIC_URL"), "/"),
			},
		},
		Redis: Redis{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Feed: Feed{
			CacheTTL:             v.GetDuration("FEED_CACHE_TTL"),
			SavedEmptyAsNotFound: v.GetBool("SAVED_EMPTY_AS_NOT_FOUND"),
		},
		Environment: strings.ToLower(v.GetString("ENVIRONMENT")),
		LogLevel:    v.GetString("LOG_LEVEL"),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate reports every missing or unusable setting at once so the process
// can refuse to start instead of serving authenticated routes insecurely.
func (c Config) Validate() error {
	var missing []string
	require := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	require("MONGODB_URI", c.Mongo.URI)
	require("DB_NAME", c.Mongo.DBName)
	require("JWT_SECRET", c.Auth.JWTSecret)

	switch c.Storage.Driver {
	case StorageDriverLocal:
		require("UPLOAD_DIR", c.Storage.Local.UploadDir)
		require("PUBLIC_BASE_URL", c.Storage.Local.PublicBaseURL)
	case StorageDriverMinio:
		require("MINIO_ENDPOINT", c.Storage.Minio.Endpoint)
		require("MINIO_ACCESS_KEY", c.Storage.Minio.AccessKey)
		require("MINIO_SECRET_KEY", c.Storage.Minio.SecretKey)
		require("MINIO_BUCKET", c.Storage.Minio.Bucket)
	case StorageDriverS3:
		require("S3_REGION", c.Storage.S3.Region)
		require("S3_BUCKET", c.Storage.S3.Bucket)
		require("S3_PUBLIC_URL", c.Storage.S3.PublicURL)
	default:
		return fmt.Errorf("%w: unknown STORAGE_DRIVER %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("%w: SESSION_TTL must be positive", ErrInvalidConfig)
	}
	if c.Storage.MaxVideoSize <= 0 {
		return fmt.Errorf("%w: MAX_VIDEO_SIZE_MB must be positive", ErrInvalidConfig)
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
