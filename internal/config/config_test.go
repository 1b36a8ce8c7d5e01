package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/XavierBriggs/Janus/internal/arbitrage"
	"github.com/XavierBriggs/Janus/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ODDS_API_KEY", "secret")
	for _, key := range []string{
		"JANUS_ENV", "JANUS_HTTP_PORT", "JANUS_TOTAL_INVESTMENT", "JANUS_ALLOWED_BOOKMAKERS",
		"JANUS_MAX_ODDS", "JANUS_EVENT_LIMIT", "JANUS_REGIONS", "JANUS_POLL_ENABLED",
		"JANUS_DEDUP_TTL", "JANUS_EXPIRE_INTERVAL", "JANUS_RETENTION", "KAFKA_BROKERS", "REDIS_URL",
		"ALEXANDRIA_DSN",
	} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8085", cfg.HTTPPort)
	assert.Equal(t, 500.0, cfg.TotalInvestment)
	assert.Equal(t, 800.0, cfg.MaxOdds)
	assert.Equal(t, 50, cfg.EventLimit)
	assert.Equal(t, []string{"us", "us2"}, cfg.Regions)
	assert.Nil(t, cfg.AllowedBookmakers)
	assert.False(t, cfg.PollEnabled)
	assert.Equal(t, 10*time.Minute, cfg.DedupTTL)
	assert.Equal(t, time.Minute, cfg.ExpireInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.Retention)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, arbitrage.DefaultConfig(), cfg.Arbitrage())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ODDS_API_KEY", "secret")
	t.Setenv("JANUS_TOTAL_INVESTMENT", "1000")
	t.Setenv("JANUS_ALLOWED_BOOKMAKERS", "FanDuel, draftkings")
	t.Setenv("JANUS_POLL_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 1000.0, cfg.TotalInvestment)
	assert.Equal(t, []string{"fanduel", "draftkings"}, cfg.AllowedBookmakers)
	assert.True(t, cfg.PollEnabled)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("JANUS_MAX_ODDS", "lots")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("ODDS_API_KEY", "")
	t.Setenv("JANUS_TOTAL_INVESTMENT", "")
	t.Setenv("JANUS_MAX_ODDS", "")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate(), "missing api key")

	cfg.OddsAPIKey = "secret"
	cfg.TotalInvestment = -5
	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, arbitrage.ErrInvalidConfig))
}

func TestValidate_Durations(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"zero expire interval with DSN", map[string]string{"ALEXANDRIA_DSN": "postgres://db", "JANUS_EXPIRE_INTERVAL": "0s"}, true},
		{"negative expire interval with DSN", map[string]string{"ALEXANDRIA_DSN": "postgres://db", "JANUS_EXPIRE_INTERVAL": "-1m"}, true},
		{"zero expire interval without DSN", map[string]string{"ALEXANDRIA_DSN": "", "JANUS_EXPIRE_INTERVAL": "0s"}, false},
		{"negative retention", map[string]string{"JANUS_RETENTION": "-1h"}, true},
		{"zero retention keeps rows", map[string]string{"ALEXANDRIA_DSN": "postgres://db", "JANUS_RETENTION": "0s"}, false},
		{"zero dedup ttl while polling", map[string]string{"JANUS_POLL_ENABLED": "true", "JANUS_DEDUP_TTL": "0s"}, true},
		{"empty regions", map[string]string{"JANUS_REGIONS": " , "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ODDS_API_KEY", "secret")
			for _, key := range []string{
				"ALEXANDRIA_DSN", "JANUS_EXPIRE_INTERVAL", "JANUS_RETENTION",
				"JANUS_POLL_ENABLED", "JANUS_DEDUP_TTL", "JANUS_REGIONS",
			} {
				t.Setenv(key, "")
			}
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			cfg, err := config.Load()
			require.NoError(t, err)

			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
