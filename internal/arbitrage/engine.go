// Package arbitrage detects guaranteed-profit combinations across bookmakers
// and splits a fixed investment across them.
package arbitrage

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/XavierBriggs/Janus/pkg/models"
)

const (
	// DefaultTotalInvestment is the stake split across every opportunity
	DefaultTotalInvestment = 500.0

	// DefaultMaxOdds excludes illiquid prices that distort probability sums
	DefaultMaxOdds = 800.0
)

// ErrInvalidConfig is wrapped by every configuration validation failure
var ErrInvalidConfig = errors.New("invalid arbitrage config")

// Config controls filtering and stake allocation
type Config struct {
	// TotalInvestment is split across the bets of each opportunity
	TotalInvestment float64

	// AllowedBookmakers restricts quotes to these bookmaker keys.
	// Nil means unrestricted; a non-nil empty slice is rejected.
	AllowedBookmakers []string

	// MaxOdds drops quotes priced above it
	MaxOdds float64
}

// DefaultConfig returns the standard 500 investment, unrestricted, 800 ceiling config
func DefaultConfig() Config {
	return Config{
		TotalInvestment: DefaultTotalInvestment,
		MaxOdds:         DefaultMaxOdds,
	}
}

// Validate checks the config before any computation
func (c Config) Validate() error {
	if math.IsNaN(c.TotalInvestment) || math.IsInf(c.TotalInvestment, 0) {
		return fmt.Errorf("%w: total investment must be finite, got %v", ErrInvalidConfig, c.TotalInvestment)
	}
	if c.TotalInvestment <= 0 {
		return fmt.Errorf("%w: total investment must be positive, got %v", ErrInvalidConfig, c.TotalInvestment)
	}
	if math.IsNaN(c.MaxOdds) || math.IsInf(c.MaxOdds, 0) || c.MaxOdds <= 0 {
		return fmt.Errorf("%w: max odds must be a positive finite number, got %v", ErrInvalidConfig, c.MaxOdds)
	}
	if c.AllowedBookmakers != nil && len(c.AllowedBookmakers) == 0 {
		return fmt.Errorf("%w: allowed bookmakers list is present but empty", ErrInvalidConfig)
	}
	return nil
}

// candidate is a quote that survived filtering, with its implied probability
type candidate struct {
	quote              models.Quote
	impliedProbability float64
}

// Detect finds every match whose best prices sum to an implied probability
// below 1 and allocates cfg.TotalInvestment across its outcomes. Results are
// sorted by profit percentage, highest first.
func Detect(quotes []models.Quote, cfg Config) ([]models.Opportunity, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var allowed map[string]bool
	if cfg.AllowedBookmakers != nil {
		allowed = make(map[string]bool, len(cfg.AllowedBookmakers))
		for _, key := range cfg.AllowedBookmakers {
			allowed[key] = true
		}
	}

	// Group by match, keeping first-seen order
	var matchOrder []string
	matchGroups := make(map[string][]models.Quote)
	for _, q := range quotes {
		if _, ok := matchGroups[q.Match]; !ok {
			matchOrder = append(matchOrder, q.Match)
		}
		matchGroups[q.Match] = append(matchGroups[q.Match], q)
	}

	opportunities := make([]models.Opportunity, 0)
	for _, match := range matchOrder {
		if opp, ok := detectMatch(match, matchGroups[match], cfg, allowed); ok {
			opportunities = append(opportunities, opp)
		}
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].ProfitPercentage > opportunities[j].ProfitPercentage
	})

	return opportunities, nil
}

// detectMatch evaluates one match group
func detectMatch(match string, rows []models.Quote, cfg Config, allowed map[string]bool) (models.Opportunity, bool) {
	// Filter out illiquid prices and books outside the allow-list
	var outcomeOrder []string
	best := make(map[string]candidate)
	for _, q := range rows {
		if q.Price <= 0 || q.Price > cfg.MaxOdds {
			continue
		}
		if allowed != nil && !allowed[q.BookmakerKey] {
			continue
		}
		p := ImpliedProbability(q.Price)

		current, seen := best[q.OutcomeName]
		if !seen {
			outcomeOrder = append(outcomeOrder, q.OutcomeName)
			best[q.OutcomeName] = candidate{quote: q, impliedProbability: p}
			continue
		}
		// Strictly lower wins: ties keep the first quote seen
		if p < current.impliedProbability {
			best[q.OutcomeName] = candidate{quote: q, impliedProbability: p}
		}
	}

	if len(outcomeOrder) == 0 {
		return models.Opportunity{}, false
	}

	selected := make([]candidate, len(outcomeOrder))
	prices := make([]float64, len(outcomeOrder))
	totalMinProbability := 0.0
	for i, outcome := range outcomeOrder {
		selected[i] = best[outcome]
		prices[i] = selected[i].quote.Price
		totalMinProbability += selected[i].impliedProbability
	}

	if totalMinProbability >= 1 {
		return models.Opportunity{}, false
	}

	stakes := AllocateStakes(prices, cfg.TotalInvestment)
	bets := make([]models.Bet, len(selected))
	guaranteedReturn := math.Inf(1)
	for i, c := range selected {
		amount := stakes[i]
		bets[i] = models.Bet{
			Outcome:            c.quote.OutcomeName,
			Bookmaker:          c.quote.BookmakerName,
			BookmakerKey:       c.quote.BookmakerKey,
			Odds:               c.quote.Price,
			ImpliedProbability: c.impliedProbability,
			BetAmount:          amount,
		}
		guaranteedReturn = math.Min(guaranteedReturn, amount*c.quote.Price)
	}

	profit := guaranteedReturn - cfg.TotalInvestment
	if profit <= 0 {
		// Sum was below 1 only by rounding noise
		return models.Opportunity{}, false
	}

	return models.Opportunity{
		Match:               match,
		CommenceTime:        rows[0].CommenceTime,
		TotalMinProbability: totalMinProbability,
		Bets:                bets,
		TotalInvestment:     cfg.TotalInvestment,
		GuaranteedReturn:    guaranteedReturn,
		Profit:              profit,
		ProfitPercentage:    profit / cfg.TotalInvestment * 100,
	}, true
}
