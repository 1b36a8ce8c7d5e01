package models

import "time"

// Bet is the stake allocated to one outcome of an arbitrage opportunity
type Bet struct {
	Outcome            string  `json:"outcome"`
	Bookmaker          string  `json:"bookmaker"`
	BookmakerKey       string  `json:"bookmakerKey"`
	Odds               float64 `json:"odds"`
	ImpliedProbability float64 `json:"impliedProbability"`
	BetAmount          float64 `json:"betAmount"`
}

// Opportunity is a guaranteed-profit combination of bets for one match
type Opportunity struct {
	Sport               string    `json:"sport,omitempty"`
	Match               string    `json:"match"`
	CommenceTime        time.Time `json:"commenceTime"`
	TotalMinProbability float64   `json:"totalMinProbability"`
	Bets                []Bet     `json:"bets"`
	TotalInvestment     float64   `json:"totalInvestment"`
	GuaranteedReturn    float64   `json:"guaranteedReturn"`
	Profit              float64   `json:"profit"`
	ProfitPercentage    float64   `json:"profitPercentage"`
}

// ScanResult is the outcome of scanning a single sport
type ScanResult struct {
	ScanID        string        `json:"scanId"`
	Sport         string        `json:"sport"`
	Events        int           `json:"events"`
	Quotes        int           `json:"quotes"`
	Opportunities []Opportunity `json:"opportunities"`
	ScannedAt     time.Time     `json:"scannedAt"`

	// NextCommence is the earliest start among the fetched events, zero when none
	NextCommence time.Time `json:"nextCommence,omitzero"`
}

// BatchResult merges the scans of several sports. Errors holds one message
// per sport that failed; failed sports contribute no opportunities.
type BatchResult struct {
	ScanID        string            `json:"scanId"`
	Opportunities []Opportunity     `json:"opportunities"`
	Errors        map[string]string `json:"errors,omitempty"`
	ScannedAt     time.Time         `json:"scannedAt"`
}
