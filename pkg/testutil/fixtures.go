package testutil

import (
	"context"
	"time"

	"github.com/XavierBriggs/Janus/pkg/models"
)

// NewTestQuote creates a test quote with the book title derived from its key
func NewTestQuote(match, bookKey, outcomeName string, price float64) models.Quote {
	return models.Quote{
		Match:         match,
		CommenceTime:  time.Now().Add(2 * time.Hour).Truncate(time.Second),
		BookmakerName: bookKey,
		BookmakerKey:  bookKey,
		MarketKey:     "h2h",
		OutcomeName:   outcomeName,
		Price:         price,
	}
}

// NewTestEvent creates a test event with no bookmakers
func NewTestEvent(eventID, homeTeam, awayTeam string, hoursUntilStart float64) models.Event {
	return models.Event{
		EventID:      eventID,
		SportKey:     "basketball_nba",
		SportTitle:   "NBA",
		HomeTeam:     homeTeam,
		AwayTeam:     awayTeam,
		CommenceTime: time.Now().Add(time.Duration(hoursUntilStart * float64(time.Hour))).Truncate(time.Second),
	}
}

// WithH2H adds a bookmaker quoting an h2h market to the event
func WithH2H(event models.Event, bookKey, bookTitle string, prices map[string]float64, order ...string) models.Event {
	outcomes := make([]models.Outcome, 0, len(order))
	for _, name := range order {
		outcomes = append(outcomes, models.Outcome{Name: name, Price: prices[name]})
	}

	event.Bookmakers = append(event.Bookmakers, models.Bookmaker{
		Key:   bookKey,
		Title: bookTitle,
		Markets: []models.Market{
			{Key: "h2h", Outcomes: outcomes},
		},
	})
	return event
}

// GoldenFixture is a set of quotes with a known number of opportunities
type GoldenFixture struct {
	Name                  string
	Quotes                []models.Quote
	ExpectedOpportunities int
}

// GetGoldenFixtures returns quote sets covering the common market shapes
func GetGoldenFixtures() []GoldenFixture {
	return []GoldenFixture{
		{
			Name: "Two-way clear arbitrage",
			Quotes: []models.Quote{
				NewTestQuote("Lakers vs Celtics", "fanduel", "Lakers", 2.10),
				NewTestQuote("Lakers vs Celtics", "draftkings", "Lakers", 1.95),
				NewTestQuote("Lakers vs Celtics", "betmgm", "Celtics", 2.05),
				NewTestQuote("Lakers vs Celtics", "fanduel", "Celtics", 1.80),
			},
			ExpectedOpportunities: 1,
		},
		{
			Name: "Efficient market",
			Quotes: []models.Quote{
				NewTestQuote("Knicks vs Nets", "fanduel", "Knicks", 1.91),
				NewTestQuote("Knicks vs Nets", "draftkings", "Knicks", 1.87),
				NewTestQuote("Knicks vs Nets", "fanduel", "Nets", 1.91),
				NewTestQuote("Knicks vs Nets", "draftkings", "Nets", 1.95),
			},
			ExpectedOpportunities: 0,
		},
		{
			Name: "Three-way with draw",
			Quotes: []models.Quote{
				NewTestQuote("Arsenal vs Chelsea", "fanduel", "Arsenal", 2.9),
				NewTestQuote("Arsenal vs Chelsea", "betrivers", "Arsenal", 3.3),
				NewTestQuote("Arsenal vs Chelsea", "fanduel", "Draw", 3.6),
				NewTestQuote("Arsenal vs Chelsea", "betmgm", "Draw", 3.8),
				NewTestQuote("Arsenal vs Chelsea", "fanduel", "Chelsea", 2.6),
				NewTestQuote("Arsenal vs Chelsea", "espnbet", "Chelsea", 3.1),
			},
			ExpectedOpportunities: 1,
		},
		{
			Name: "Illiquid longshot ignored",
			Quotes: []models.Quote{
				NewTestQuote("Suns vs Jazz", "fanduel", "Suns", 1.01),
				NewTestQuote("Suns vs Jazz", "betus", "Jazz", 1000),
				NewTestQuote("Suns vs Jazz", "draftkings", "Jazz", 12.0),
			},
			ExpectedOpportunities: 0,
		},
		{
			Name: "Mixed matches",
			Quotes: []models.Quote{
				NewTestQuote("Heat vs Magic", "fanduel", "Heat", 2.3),
				NewTestQuote("Heat vs Magic", "betmgm", "Magic", 1.9),
				NewTestQuote("Bulls vs Bucks", "fanduel", "Bulls", 1.7),
				NewTestQuote("Bulls vs Bucks", "betmgm", "Bucks", 2.1),
				NewTestQuote("Spurs vs Rockets", "lowvig", "Spurs", 2.05),
				NewTestQuote("Spurs vs Rockets", "betonlineag", "Rockets", 2.05),
			},
			ExpectedOpportunities: 2,
		},
	}
}

// MockVendorAdapter is a test adapter that returns predetermined snapshots
type MockVendorAdapter struct {
	FetchOddsFunc   func(ctx context.Context, opts *models.FetchOddsOptions) ([]models.Event, error)
	FetchSportsFunc func(ctx context.Context) ([]models.Sport, error)
	RateLimits      models.RateLimits
}

func (m *MockVendorAdapter) FetchOdds(ctx context.Context, opts *models.FetchOddsOptions) ([]models.Event, error) {
	if m.FetchOddsFunc != nil {
		return m.FetchOddsFunc(ctx, opts)
	}
	return []models.Event{}, nil
}

func (m *MockVendorAdapter) FetchSports(ctx context.Context) ([]models.Sport, error) {
	if m.FetchSportsFunc != nil {
		return m.FetchSportsFunc(ctx)
	}
	return []models.Sport{}, nil
}

func (m *MockVendorAdapter) GetRateLimits() models.RateLimits {
	return m.RateLimits
}
