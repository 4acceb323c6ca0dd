package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App            AppConfig
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	JWT            JWTConfig
	Recommendation RecommendationConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type JWTConfig struct {
	SecretKey string
}

// RecommendationConfig is loaded once at startup and injected into the
// recommendation service as an immutable value.
type RecommendationConfig struct {
	// Algorithm keys allowed to serve traffic.
	Enabled []string
	// Per-context default algorithm key, e.g. home=most_viewed_v1.
	DefaultsByContext map[string]string
	// Final fallback key; must be registered or startup fails.
	DefaultAlgorithm string
	CacheTTL         time.Duration
	// Buffer size of the async impression writer.
	ImpressionBuffer int
	// Session cookie lifetime for anonymous visitors.
	SessionTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	cacheTTL, err := strconv.Atoi(getEnv("RECS_CACHE_TTL_SECONDS", "300"))
	if err != nil {
		return nil, errors.New("invalid recommendation cache ttl")
	}

	impressionBuffer, err := strconv.Atoi(getEnv("RECS_IMPRESSION_BUFFER", "1024"))
	if err != nil {
		return nil, errors.New("invalid impression buffer size")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Market Recommendation API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "market_recs"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Recommendation: RecommendationConfig{
			Enabled: splitList(getEnv("RECS_ENABLED",
				"upsell_v1,cross_sell_v1,most_viewed_v1,most_purchased_v1,previously_viewed_v1,fbt_v1")),
			DefaultsByContext: parsePairs(getEnv("RECS_CONTEXT_DEFAULTS",
				"home=most_viewed_v1,product_page=upsell_v1,cart=fbt_v1,email=previously_viewed_v1,checkout=cross_sell_v1")),
			DefaultAlgorithm: getEnv("RECS_DEFAULT_ALGORITHM", "most_viewed_v1"),
			CacheTTL:         time.Duration(cacheTTL) * time.Second,
			ImpressionBuffer: impressionBuffer,
			SessionTTL:       30 * 24 * time.Hour,
		},
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parsePairs(raw string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}
