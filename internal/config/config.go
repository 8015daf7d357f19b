package config

import (
	"database/sql"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cast"
)

type Config struct {
	Port              int
	DatabaseURL       string
	RedisAddr         string
	JWTSecret         string
	TokenTTL          time.Duration
	OMDbAPIKey        string
	OMDbAPIURL        string
	RegistrationOpen  bool
	RecommendCacheTTL time.Duration
}

func Load() *Config {
	return &Config{
		Port:              envInt("PORT", 8080),
		DatabaseURL:       env("DATABASE_URL", "postgres://streamflix:streamflix@db:5432/streamflix?sslmode=disable"),
		RedisAddr:         env("REDIS_ADDR", "redis:6379"),
		JWTSecret:         env("JWT_SECRET", "change-me-in-production"),
		TokenTTL:          envDuration("TOKEN_TTL", 24*time.Hour),
		OMDbAPIKey:        env("OMDB_API_KEY", ""),
		OMDbAPIURL:        env("OMDB_API_URL", "https://www.omdbapi.com/"),
		RegistrationOpen:  true,
		RecommendCacheTTL: 5 * time.Minute,
	}
}

// MergeFromDB overlays operator-editable settings stored in the settings
// table. A missing table or row leaves the env/default value in place.
func (c *Config) MergeFromDB(db *sql.DB) {
	rows, err := db.Query("SELECT key, value FROM settings")
	if err != nil {
		log.Printf("config: skipping DB merge: %v", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			continue
		}
		switch key {
		case "omdb_api_key":
			c.OMDbAPIKey = value
		case "omdb_api_url":
			c.OMDbAPIURL = value
		case "registration_open":
			c.RegistrationOpen = cast.ToBool(value)
		case "recommend_cache_ttl_seconds":
			if secs := cast.ToInt(value); secs > 0 {
				c.RecommendCacheTTL = time.Duration(secs) * time.Second
			}
		}
	}
}

func (c *Config) OMDbEnabled() bool {
	return c.OMDbAPIKey != ""
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
