// Package soccer_epl configures English Premier League scanning. Soccer
// moneylines are three-way: home, away and Draw.
package soccer_epl

import (
	"time"

	"github.com/XavierBriggs/Janus/pkg/contracts"
)

const (
	sportKey    = "soccer_epl"
	displayName = "EPL Soccer"
)

// Config contains EPL-specific scan configuration
type Config struct {
	Regions      []string
	Markets      []string
	EventLimit   int
	PollInterval time.Duration
}

// DefaultConfig returns the standard EPL configuration
func DefaultConfig() *Config {
	return &Config{
		Regions:      []string{"us", "us2"},
		Markets:      []string{"h2h"},
		EventLimit:   50,
		PollInterval: 5 * time.Minute,
	}
}

// Module implements the SportModule interface for the EPL
type Module struct {
	config *Config
}

var _ contracts.SportModule = (*Module)(nil)

// NewModule creates a new EPL sport module
func NewModule() *Module {
	return &Module{config: DefaultConfig()}
}

// NewModuleWithConfig creates an EPL module from an explicit config
func NewModuleWithConfig(config *Config) *Module {
	return &Module{config: config}
}

// GetSportKey returns the sport identifier
func (m *Module) GetSportKey() string {
	return sportKey
}

// GetDisplayName returns the human-readable name
func (m *Module) GetDisplayName() string {
	return displayName
}

// GetRegions returns the regions to poll
func (m *Module) GetRegions() []string {
	return m.config.Regions
}

// GetMarkets returns the markets to poll. Only h2h carries the Draw outcome
// the three-way check needs.
func (m *Module) GetMarkets() []string {
	return m.config.Markets
}

// GetPollInterval returns the fixed poll interval
func (m *Module) GetPollInterval() time.Duration {
	return m.config.PollInterval
}

// GetEventLimit returns how many events are scanned per snapshot
func (m *Module) GetEventLimit() int {
	return m.config.EventLimit
}
