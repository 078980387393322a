package app

import (
	"time"

	httpx "github.com/hittalaget/hittalaget-backend/internal/http"
	"github.com/hittalaget/hittalaget-backend/internal/platform/envutil"
	"github.com/hittalaget/hittalaget-backend/internal/platform/logger"
)

type Config struct {
	ServiceName    string
	Environment    string
	Version        string
	JWTSecretKey   string
	AccessTokenTTL time.Duration
	AllowOrigins   []string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := envutil.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	origins := envutil.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173", log)
	return Config{
		ServiceName:    envutil.GetEnv("SERVICE_NAME", "hittalaget-backend", log),
		Environment:    envutil.GetEnv("APP_ENV", "development", log),
		Version:        envutil.GetEnv("APP_VERSION", "dev", log),
		JWTSecretKey:   jwtSecretKey,
		AccessTokenTTL: time.Duration(accessTokenTTLSeconds) * time.Second,
		AllowOrigins:   httpx.SplitOrigins(origins),
	}
}
