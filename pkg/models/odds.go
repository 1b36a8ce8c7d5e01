package models

import "time"

// Event represents a single contest snapshot from a vendor, with its nested
// bookmaker -> market -> outcome prices
type Event struct {
	EventID      string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	CommenceTime time.Time   `json:"commence_time"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker holds one book's markets for an event
type Bookmaker struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Markets    []Market  `json:"markets"`
}

// Market holds the outcomes of one market type (h2h, spreads, totals)
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is a single priced result
type Outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`           // Decimal odds
	Point *float64 `json:"point,omitempty"` // For spreads/totals
}

// Quote is one flattened (match, outcome, bookmaker, price) row
type Quote struct {
	Match         string    `json:"match"`
	CommenceTime  time.Time `json:"commenceTime"`
	BookmakerName string    `json:"bookmaker"`
	BookmakerKey  string    `json:"bookmakerKey"`
	MarketKey     string    `json:"marketKey"`
	OutcomeName   string    `json:"outcome"`
	Price         float64   `json:"odds"` // Decimal odds
}

// Sport is an entry of the vendor's sport catalog
type Sport struct {
	Key          string `json:"key"`
	Group        string `json:"group"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Active       bool   `json:"active"`
	HasOutrights bool   `json:"has_outrights"`
}

// Sportsbook describes a bookmaker the scanner knows about
type Sportsbook struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Region       string `json:"region"`
	RequiresPaid bool   `json:"requiresPaid,omitempty"` // Needs a paid vendor plan
	Notes        string `json:"notes,omitempty"`
}

// FetchOddsOptions contains parameters for fetching odds
type FetchOddsOptions struct {
	Sport            string
	Regions          []string
	Markets          []string
	CommenceTimeFrom time.Time // Zero means "now"
}

// RateLimits contains rate limiting information
type RateLimits struct {
	RequestsRemaining int
	RequestsUsed      int
}
