package basketball_nba

import (
	"time"
)

// Config contains NBA-specific scan configuration
type Config struct {
	// Sport identification
	SportKey    string
	DisplayName string

	// Regions to request
	Regions []string

	// Markets to request. Moneyline is the only two-way market the engine prices.
	Markets []string

	// EventLimit caps how many events of one snapshot are scanned
	EventLimit int

	// Polling cadence of the scheduler
	Polling PollingConfig
}

// PollingConfig defines how often the NBA slate is rescanned
type PollingConfig struct {
	// Default polling interval (used by scheduler)
	PollInterval time.Duration

	// Pre-match polling interval (>RampWithinHours from start)
	PreMatchInterval time.Duration

	// How many hours before start to begin ramping
	RampWithinHours float64

	// Target interval near tipoff
	RampTargetInterval time.Duration
}

// DefaultConfig returns the standard NBA configuration
func DefaultConfig() *Config {
	return &Config{
		SportKey:    "basketball_nba",
		DisplayName: "NBA Basketball",
		Regions:     []string{"us", "us2"},
		Markets:     []string{"h2h"},
		EventLimit:  50,

		Polling: PollingConfig{
			PollInterval:       2 * time.Minute,
			PreMatchInterval:   2 * time.Minute,
			RampWithinHours:    6.0,
			RampTargetInterval: 45 * time.Second,
		},
	}
}

// GetIntervalFor returns the polling interval for an event starting in
// hoursUntilStart hours. Lines move fastest close to tipoff.
func (c *Config) GetIntervalFor(hoursUntilStart float64) time.Duration {
	if hoursUntilStart >= c.Polling.RampWithinHours {
		return c.Polling.PreMatchInterval
	}
	if hoursUntilStart <= 0 {
		return c.Polling.RampTargetInterval
	}

	// Linear ramp from PreMatchInterval down to RampTargetInterval
	rampFactor := hoursUntilStart / c.Polling.RampWithinHours
	diff := c.Polling.PreMatchInterval - c.Polling.RampTargetInterval
	return c.Polling.RampTargetInterval + time.Duration(float64(diff)*rampFactor)
}
