package config

import "github.com/spf13/viper"

func newEnv() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")

	v.SetDefault("MONGODB_URI", "")
	v.SetDefault("DB_NAME", "reelerdb")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_TTL", "168h") // 7 days, matches the cookie max-age
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("AUTH_RATE_LIMIT_PER_MINUTE", 30)
	v.SetDefault("AUTH_RATE_LIMIT_BURST", 10)

	v.SetDefault("STORAGE_DRIVER", StorageDriverLocal)
	v.SetDefault("MAX_VIDEO_SIZE_MB", 100)
	v.SetDefault("STORAGE_BREAKER_TIMEOUT", "30s")
	v.SetDefault("UPLOAD_DIR", "./public/uploads")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:3000/uploads")
	v.SetDefault("MINIO_USE_SSL", false)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("FEED_CACHE_TTL", "30s")
	v.SetDefault("SAVED_EMPTY_AS_NOT_FOUND", true)

	return v
}
