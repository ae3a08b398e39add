package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the server reads from the environment.
// Values come from .env (loaded by main) or the process environment,
// with local-development fallbacks.
type Config struct {
	Port            string
	DatabaseURL     string
	SessionSecret   string
	JWTSecret       string
	MediaDir        string
	PublicBaseURL   string
	ImgurClientID   string
	LogLevel        string
	LogPretty       bool
	GinMode         string
	RankingCacheTTL time.Duration
	SeedProposals   bool
}

// Load reads the configuration from the environment.
func Load() *Config {
	cfg := &Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     getenv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=colabora port=5432 sslmode=disable TimeZone=America/Mexico_City"),
		SessionSecret:   getenv("SESSION_SECRET", "secret_key_change_me"),
		JWTSecret:       getenv("JWT_SECRET", "jwt_secret_change_me"),
		MediaDir:        getenv("MEDIA_DIR", "./data/media"),
		PublicBaseURL:   strings.TrimSuffix(getenv("PUBLIC_BASE_URL", ""), "/"),
		ImgurClientID:   os.Getenv("IMGUR_CLIENT_ID"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogPretty:       getbool("LOG_PRETTY", false),
		GinMode:         getenv("GIN_MODE", "release"),
		RankingCacheTTL: getduration("RANKING_CACHE_TTL", time.Minute),
		SeedProposals:   getbool("SEED_PROPOSALS", true),
	}
	return cfg
}

// UsesSQLite reports whether DatabaseURL selects the embedded SQLite driver.
func (c *Config) UsesSQLite() bool {
	return strings.HasPrefix(c.DatabaseURL, "sqlite:")
}

// SQLitePath strips the sqlite: scheme from DatabaseURL.
func (c *Config) SQLitePath() string {
	return strings.TrimPrefix(c.DatabaseURL, "sqlite:")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getbool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
