package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Auth   AuthConfig
	Cache  CacheConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name    string
	Env     string
	Host    string
	Port    string
	Version string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig holds the configured API tokens.
type AuthConfig struct {
	TokensFile string
	Tokens     []TokenConfig
}

// CacheConfig controls listing cache lifetimes.
type CacheConfig struct {
	AbsoluteTTLSeconds   int
	SlidingTTLSeconds    int
	PruneIntervalSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "user-directory"),
			Env:     getEnv("APP_ENV", "development"),
			Host:    getEnv("APP_HOST", "0.0.0.0"),
			Port:    getEnv("APP_PORT", "8080"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			TokensFile: os.Getenv("AUTH_TOKENS_FILE"),
		},
		Cache: CacheConfig{
			AbsoluteTTLSeconds:   getEnvAsInt("CACHE_ABSOLUTE_TTL_SECONDS", 300),
			SlidingTTLSeconds:    getEnvAsInt("CACHE_SLIDING_TTL_SECONDS", 120),
			PruneIntervalSeconds: getEnvAsInt("CACHE_PRUNE_INTERVAL_SECONDS", 60),
		},
	}

	if cfg.Auth.TokensFile != "" {
		tokens, err := LoadTokens(cfg.Auth.TokensFile)
		if err != nil {
			return nil, fmt.Errorf("load tokens: %w", err)
		}
		cfg.Auth.Tokens = tokens
	} else {
		cfg.Auth.Tokens = DevelopmentTokens()
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsProduction reports whether error details must be hidden from clients.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// AbsoluteTTL returns the fixed lifetime of a cached listing.
func (c CacheConfig) AbsoluteTTL() time.Duration {
	return seconds(c.AbsoluteTTLSeconds, 5*time.Minute)
}

// SlidingTTL returns the idle lifetime of a cached listing.
func (c CacheConfig) SlidingTTL() time.Duration {
	return seconds(c.SlidingTTLSeconds, 2*time.Minute)
}

// PruneInterval returns how often expired entries are swept; zero disables the sweeper.
func (c CacheConfig) PruneInterval() time.Duration {
	if c.PruneIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(c.PruneIntervalSeconds) * time.Second
}

func seconds(val int, fallback time.Duration) time.Duration {
	if val <= 0 {
		return fallback
	}
	return time.Duration(val) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
