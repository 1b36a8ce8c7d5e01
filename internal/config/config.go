// Package config loads Janus settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/XavierBriggs/Janus/internal/arbitrage"
	"github.com/XavierBriggs/Janus/internal/bookmakers"
	"github.com/XavierBriggs/Janus/internal/normalizer"
)

// Config holds Janus configuration
type Config struct {
	Env        string
	OddsAPIKey string
	HTTPPort   string

	// Arbitrage defaults applied when a request does not override them
	TotalInvestment   float64
	AllowedBookmakers []string
	MaxOdds           float64

	// EventLimit and Regions are applied to every registered sport module
	// and to sport keys scanned without one
	EventLimit int
	Regions    []string

	// Background polling
	PollEnabled    bool
	DedupTTL       time.Duration
	ExpireInterval time.Duration
	Retention      time.Duration

	// Optional sinks; empty disables them
	RedisURL      string
	RedisPassword string
	AlexandriaDSN string
	KafkaBrokers  []string
	KafkaTopic    string
}

// Load reads a .env file if present, then the process environment
func Load() (Config, error) {
	// Missing .env is fine
	_ = godotenv.Load()

	var errs []error
	cfg := Config{
		Env:               getEnv("JANUS_ENV", "local"),
		OddsAPIKey:        os.Getenv("ODDS_API_KEY"),
		HTTPPort:          getEnv("JANUS_HTTP_PORT", "8085"),
		TotalInvestment:   getFloat("JANUS_TOTAL_INVESTMENT", arbitrage.DefaultTotalInvestment, &errs),
		AllowedBookmakers: bookmakers.ParseKeys(os.Getenv("JANUS_ALLOWED_BOOKMAKERS")),
		MaxOdds:           getFloat("JANUS_MAX_ODDS", arbitrage.DefaultMaxOdds, &errs),
		EventLimit:        getInt("JANUS_EVENT_LIMIT", normalizer.DefaultEventLimit, &errs),
		Regions:           splitCSV(getEnv("JANUS_REGIONS", "us,us2")),
		PollEnabled:       getBool("JANUS_POLL_ENABLED", false, &errs),
		DedupTTL:          getDuration("JANUS_DEDUP_TTL", 10*time.Minute, &errs),
		ExpireInterval:    getDuration("JANUS_EXPIRE_INTERVAL", time.Minute, &errs),
		Retention:         getDuration("JANUS_RETENTION", 7*24*time.Hour, &errs),
		RedisURL:          os.Getenv("REDIS_URL"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		AlexandriaDSN:     os.Getenv("ALEXANDRIA_DSN"),
		KafkaBrokers:      splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "arbitrage.detected"),
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate checks required settings
func (c Config) Validate() error {
	if c.OddsAPIKey == "" {
		return errors.New("ODDS_API_KEY environment variable is required")
	}
	if c.HTTPPort == "" {
		return errors.New("JANUS_HTTP_PORT must not be empty")
	}
	if c.EventLimit <= 0 {
		return fmt.Errorf("JANUS_EVENT_LIMIT must be positive, got %d", c.EventLimit)
	}
	if len(c.Regions) == 0 {
		return errors.New("JANUS_REGIONS must name at least one region")
	}
	if c.PollEnabled && c.DedupTTL <= 0 {
		return fmt.Errorf("JANUS_DEDUP_TTL must be positive, got %v", c.DedupTTL)
	}
	if c.AlexandriaDSN != "" && c.ExpireInterval <= 0 {
		return fmt.Errorf("JANUS_EXPIRE_INTERVAL must be positive, got %v", c.ExpireInterval)
	}
	if c.Retention < 0 {
		return fmt.Errorf("JANUS_RETENTION must not be negative, got %v", c.Retention)
	}
	if err := c.Arbitrage().Validate(); err != nil {
		return err
	}
	return nil
}

// Arbitrage returns the default engine config
func (c Config) Arbitrage() arbitrage.Config {
	return arbitrage.Config{
		TotalInvestment:   c.TotalInvestment,
		AllowedBookmakers: c.AllowedBookmakers,
		MaxOdds:           c.MaxOdds,
	}
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64, errs *[]error) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s %q: %w", key, raw, err))
		return defaultValue
	}
	return val
}

func getInt(key string, defaultValue int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s %q: %w", key, raw, err))
		return defaultValue
	}
	return val
}

func getBool(key string, defaultValue bool, errs *[]error) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s %q: %w", key, raw, err))
		return defaultValue
	}
	return val
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s %q: %w", key, raw, err))
		return defaultValue
	}
	return val
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
