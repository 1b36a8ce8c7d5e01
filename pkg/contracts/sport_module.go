package contracts

import "time"

// SportModule defines the polling configuration of one sport
type SportModule interface {
	// GetSportKey returns the vendor sport key (e.g., "basketball_nba")
	GetSportKey() string

	// GetDisplayName returns the human-readable name (e.g., "NBA Basketball")
	GetDisplayName() string

	// GetRegions returns the bookmaker regions to request (e.g., ["us", "us2"])
	GetRegions() []string

	// GetMarkets returns the markets to request
	GetMarkets() []string

	// GetPollInterval returns how often the scheduler scans this sport
	GetPollInterval() time.Duration

	// GetEventLimit caps how many events of one snapshot are scanned
	GetEventLimit() int
}

// RampedPoller is implemented by sports whose poll cadence tightens as the
// next event approaches
type RampedPoller interface {
	// GetIntervalFor returns the poll interval when the next event starts
	// in hoursUntilStart hours (negative once it has started)
	GetIntervalFor(hoursUntilStart float64) time.Duration
}
