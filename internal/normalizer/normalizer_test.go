package normalizer_test

import (
	"testing"

	"github.com/XavierBriggs/Janus/internal/normalizer"
	"github.com/XavierBriggs/Janus/pkg/models"
	"github.com/XavierBriggs/Janus/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten_EmitsOneQuotePerOutcome(t *testing.T) {
	event := testutil.NewTestEvent("evt1", "Lakers", "Celtics", 3)
	event = testutil.WithH2H(event, "fanduel", "FanDuel",
		map[string]float64{"Lakers": 2.1, "Celtics": 1.8}, "Lakers", "Celtics")
	event = testutil.WithH2H(event, "betmgm", "BetMGM",
		map[string]float64{"Lakers": 1.95, "Celtics": 2.05}, "Lakers", "Celtics")

	quotes := normalizer.Flatten([]models.Event{event}, normalizer.DefaultEventLimit)
	require.Len(t, quotes, 4)

	first := quotes[0]
	assert.Equal(t, "Lakers vs Celtics", first.Match)
	assert.Equal(t, "FanDuel", first.BookmakerName)
	assert.Equal(t, "fanduel", first.BookmakerKey)
	assert.Equal(t, "h2h", first.MarketKey)
	assert.Equal(t, "Lakers", first.OutcomeName)
	assert.Equal(t, 2.1, first.Price)
	assert.True(t, first.CommenceTime.Equal(event.CommenceTime))

	assert.Equal(t, "betmgm", quotes[3].BookmakerKey)
	assert.Equal(t, "Celtics", quotes[3].OutcomeName)
}

func TestFlatten_TruncatesToLimit(t *testing.T) {
	var events []models.Event
	for _, teams := range [][2]string{{"A", "B"}, {"C", "D"}, {"E", "F"}} {
		e := testutil.NewTestEvent(teams[0]+teams[1], teams[0], teams[1], 1)
		e = testutil.WithH2H(e, "fanduel", "FanDuel",
			map[string]float64{teams[0]: 2, teams[1]: 2}, teams[0], teams[1])
		events = append(events, e)
	}

	quotes := normalizer.Flatten(events, 2)
	require.Len(t, quotes, 4)
	for _, q := range quotes {
		assert.NotEqual(t, "E vs F", q.Match)
	}

	assert.Empty(t, normalizer.Flatten(events, 0))
	assert.Len(t, normalizer.Flatten(events, 10), 6)
}

func TestFlatten_KeepsDuplicateMarkets(t *testing.T) {
	event := testutil.NewTestEvent("evt1", "Heat", "Magic", 1)
	event.Bookmakers = []models.Bookmaker{
		{
			Key:   "fanduel",
			Title: "FanDuel",
			Markets: []models.Market{
				{Key: "h2h", Outcomes: []models.Outcome{{Name: "Heat", Price: 2.0}}},
				{Key: "h2h_lay", Outcomes: []models.Outcome{{Name: "Heat", Price: 2.2}}},
			},
		},
	}

	quotes := normalizer.Flatten([]models.Event{event}, 1)
	require.Len(t, quotes, 2)
	assert.Equal(t, "h2h", quotes[0].MarketKey)
	assert.Equal(t, "h2h_lay", quotes[1].MarketKey)
}

func TestFlatten_MissingNestedSlices(t *testing.T) {
	noBooks := testutil.NewTestEvent("evt1", "Suns", "Jazz", 1)
	noMarkets := testutil.NewTestEvent("evt2", "Kings", "Hawks", 1)
	noMarkets.Bookmakers = []models.Bookmaker{{Key: "fanduel", Title: "FanDuel"}}
	noOutcomes := testutil.NewTestEvent("evt3", "Nets", "Knicks", 1)
	noOutcomes.Bookmakers = []models.Bookmaker{{Key: "fanduel", Markets: []models.Market{{Key: "h2h"}}}}

	quotes := normalizer.Flatten([]models.Event{noBooks, noMarkets, noOutcomes}, 10)
	assert.Empty(t, quotes)
	assert.Empty(t, normalizer.Flatten(nil, 10))
}

func TestMatchKey(t *testing.T) {
	assert.Equal(t, "Arsenal vs Chelsea", normalizer.MatchKey("Arsenal", "Chelsea"))
}
