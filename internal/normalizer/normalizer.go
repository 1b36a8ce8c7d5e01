// Package normalizer flattens nested vendor odds snapshots into flat quotes.
package normalizer

import (
	"fmt"

	"github.com/XavierBriggs/Janus/pkg/models"
)

// DefaultEventLimit caps how many events of a snapshot are flattened
const DefaultEventLimit = 50

// Flatten converts the first limit events into one Quote per
// bookmaker/market/outcome. Events are taken in the order given.
func Flatten(events []models.Event, limit int) []models.Quote {
	if limit <= 0 || len(events) == 0 {
		return nil
	}
	if len(events) > limit {
		events = events[:limit]
	}

	var quotes []models.Quote
	for _, event := range events {
		match := MatchKey(event.HomeTeam, event.AwayTeam)

		for _, bookmaker := range event.Bookmakers {
			for _, market := range bookmaker.Markets {
				for _, outcome := range market.Outcomes {
					quotes = append(quotes, models.Quote{
						Match:         match,
						CommenceTime:  event.CommenceTime,
						BookmakerName: bookmaker.Title,
						BookmakerKey:  bookmaker.Key,
						MarketKey:     market.Key,
						OutcomeName:   outcome.Name,
						Price:         outcome.Price,
					})
				}
			}
		}
	}

	return quotes
}

// MatchKey builds the identity of a contest, e.g. "Lakers vs Celtics"
func MatchKey(homeTeam, awayTeam string) string {
	return fmt.Sprintf("%s vs %s", homeTeam, awayTeam)
}
