package delta_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XavierBriggs/Janus/internal/delta"
	"github.com/XavierBriggs/Janus/pkg/models"
)

func newEngine(t *testing.T, ttl time.Duration) (*delta.Engine, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return delta.NewEngine(client, ttl), mr
}

func opportunity(match string, profitPct float64, homeBook string) models.Opportunity {
	return models.Opportunity{
		Sport: "basketball_nba",
		Match: match,
		Bets: []models.Bet{
			{Outcome: "Home", BookmakerKey: homeBook},
			{Outcome: "Away", BookmakerKey: "betmgm"},
		},
		ProfitPercentage: profitPct,
	}
}

func TestDetectChanges_NewOpportunity(t *testing.T) {
	engine, _ := newEngine(t, time.Minute)

	deltas, err := engine.DetectChanges(context.Background(), []models.Opportunity{
		opportunity("Lakers vs Celtics", 3.73, "fanduel"),
	})
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, delta.ChangeTypeNew, deltas[0].ChangeType)
	assert.Nil(t, deltas[0].OldProfit)
}

func TestDetectChanges_AfterMarkSeen(t *testing.T) {
	engine, mr := newEngine(t, time.Minute)
	ctx := context.Background()

	seen := opportunity("Lakers vs Celtics", 3.73, "fanduel")
	require.NoError(t, engine.MarkSeen(ctx, []models.Opportunity{seen}))
	assert.True(t, mr.Exists(delta.BuildKey(seen)))

	tests := []struct {
		name     string
		opp      models.Opportunity
		expected delta.ChangeType
	}{
		{"unchanged", opportunity("Lakers vs Celtics", 3.731, "fanduel"), delta.ChangeTypeNone},
		{"profit moved", opportunity("Lakers vs Celtics", 4.10, "fanduel"), delta.ChangeTypeProfit},
		{"books changed", opportunity("Lakers vs Celtics", 3.73, "draftkings"), delta.ChangeTypeBooks},
		{"other match", opportunity("Heat vs Magic", 3.73, "fanduel"), delta.ChangeTypeNew},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deltas, err := engine.DetectChanges(ctx, []models.Opportunity{tt.opp})
			require.NoError(t, err)
			if tt.expected == delta.ChangeTypeNone {
				assert.Empty(t, deltas)
				return
			}
			require.Len(t, deltas, 1)
			assert.Equal(t, tt.expected, deltas[0].ChangeType)
		})
	}
}

func TestDetectNew_ExpiresWithTTL(t *testing.T) {
	engine, mr := newEngine(t, 30*time.Second)
	ctx := context.Background()

	opps := []models.Opportunity{opportunity("Lakers vs Celtics", 3.73, "fanduel")}
	require.NoError(t, engine.MarkSeen(ctx, opps))

	fresh, err := engine.DetectNew(ctx, opps)
	require.NoError(t, err)
	assert.Empty(t, fresh)

	mr.FastForward(31 * time.Second)

	fresh, err = engine.DetectNew(ctx, opps)
	require.NoError(t, err)
	assert.Len(t, fresh, 1)
}

func TestDetectChanges_CorruptCacheTreatedAsNew(t *testing.T) {
	engine, mr := newEngine(t, time.Minute)
	opp := opportunity("Lakers vs Celtics", 3.73, "fanduel")
	require.NoError(t, mr.Set(delta.BuildKey(opp), "not json"))

	deltas, err := engine.DetectChanges(context.Background(), []models.Opportunity{opp})
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, delta.ChangeTypeNew, deltas[0].ChangeType)
}

func TestEmptyInput(t *testing.T) {
	engine, _ := newEngine(t, time.Minute)
	deltas, err := engine.DetectChanges(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, deltas)
	assert.NoError(t, engine.MarkSeen(context.Background(), nil))
}
