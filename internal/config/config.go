package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds gateway configuration
type Config struct {
	Server    ServerConfig
	Upstream  UpstreamConfig
	Cookies   CookieConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// UpstreamConfig describes the remote REST API the gateway fronts.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CookieConfig controls the browser-facing session cookies.
type CookieConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// ForceSecure marks cookies Secure even when the gateway itself is
	// reached over plain HTTP (TLS terminated at a proxy in front of us).
	ForceSecure bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// ProfileTTL caps how long a fetched profile may be served from cache.
	ProfileTTL time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "4100")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("UPSTREAM_TIMEOUT_SECONDS", 10)
	viper.SetDefault("COOKIE_ACCESS_TTL_MINUTES", 60)
	viper.SetDefault("COOKIE_REFRESH_TTL_HOURS", 168)
	viper.SetDefault("PROFILE_CACHE_TTL_SECONDS", 60)
	viper.SetDefault("RATE_LIMIT_RPS", 5.0)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Upstream: UpstreamConfig{
			BaseURL: viper.GetString("UPSTREAM_BASE_URL"),
			Timeout: time.Duration(viper.GetInt("UPSTREAM_TIMEOUT_SECONDS")) * time.Second,
		},
		Cookies: CookieConfig{
			AccessTTL:   time.Duration(viper.GetInt("COOKIE_ACCESS_TTL_MINUTES")) * time.Minute,
			RefreshTTL:  time.Duration(viper.GetInt("COOKIE_REFRESH_TTL_HOURS")) * time.Hour,
			ForceSecure: viper.GetBool("COOKIE_FORCE_SECURE"),
		},
		Redis: RedisConfig{
			Host:       viper.GetString("REDIS_HOST"),
			Port:       viper.GetString("REDIS_PORT"),
			Password:   viper.GetString("REDIS_PASSWORD"),
			DB:         0,
			ProfileTTL: time.Duration(viper.GetInt("PROFILE_CACHE_TTL_SECONDS")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	if cfg.Upstream.BaseURL == "" {
		return nil, fmt.Errorf("UPSTREAM_BASE_URL is required")
	}

	return cfg, nil
}
