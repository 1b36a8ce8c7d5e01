package basketball_nba

import (
	"time"

	"github.com/XavierBriggs/Janus/pkg/contracts"
)

// Module implements the SportModule interface for NBA Basketball
type Module struct {
	config *Config
}

var (
	_ contracts.SportModule  = (*Module)(nil)
	_ contracts.RampedPoller = (*Module)(nil)
)

// NewModule creates a new NBA sport module
func NewModule() *Module {
	return &Module{
		config: DefaultConfig(),
	}
}

// NewModuleWithConfig creates an NBA module from an explicit config
func NewModuleWithConfig(config *Config) *Module {
	return &Module{config: config}
}

// GetSportKey returns the sport identifier
func (m *Module) GetSportKey() string {
	return m.config.SportKey
}

// GetDisplayName returns the human-readable name
func (m *Module) GetDisplayName() string {
	return m.config.DisplayName
}

// GetRegions returns the regions to poll
func (m *Module) GetRegions() []string {
	return m.config.Regions
}

// GetMarkets returns the markets to poll
func (m *Module) GetMarkets() []string {
	return m.config.Markets
}

// GetPollInterval returns the default poll interval
func (m *Module) GetPollInterval() time.Duration {
	return m.config.Polling.PollInterval
}

// GetEventLimit returns how many events are scanned per snapshot
func (m *Module) GetEventLimit() int {
	return m.config.EventLimit
}

// GetIntervalFor returns the ramped poll interval for the next tipoff
func (m *Module) GetIntervalFor(hoursUntilStart float64) time.Duration {
	return m.config.GetIntervalFor(hoursUntilStart)
}
