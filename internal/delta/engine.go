package delta

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/XavierBriggs/Janus/pkg/models"
	"github.com/redis/go-redis/v9"
)

// Engine detects which opportunities changed since they were last published
// by comparing against a Redis cache
type Engine struct {
	redis *redis.Client
	ttl   time.Duration
}

// CachedOpportunity is the minimal data stored in Redis for comparison
type CachedOpportunity struct {
	ProfitPercentage float64   `json:"profit_percentage"`
	Books            string    `json:"books"`
	SeenAt           time.Time `json:"seen_at"`
}

// ChangeType indicates the type of change detected
type ChangeType string

const (
	ChangeTypeNew    ChangeType = "new"
	ChangeTypeBooks  ChangeType = "books"
	ChangeTypeProfit ChangeType = "profit"
	ChangeTypeNone   ChangeType = "none"
)

// profitEpsilon ignores profit moves below a hundredth of a percent
const profitEpsilon = 0.01

// Delta represents a detected change
type Delta struct {
	Opportunity models.Opportunity
	ChangeType  ChangeType
	OldProfit   *float64
}

// NewEngine creates a new delta detection engine
func NewEngine(redisClient *redis.Client, cacheTTL time.Duration) *Engine {
	return &Engine{
		redis: redisClient,
		ttl:   cacheTTL,
	}
}

// DetectChanges compares opportunities against the cache and returns only
// the ones that are new or moved
func (e *Engine) DetectChanges(ctx context.Context, opps []models.Opportunity) ([]Delta, error) {
	if len(opps) == 0 {
		return nil, nil
	}

	keys := make([]string, len(opps))
	for i, opp := range opps {
		keys[i] = BuildKey(opp)
	}

	cachedValues, err := e.redis.MGet(ctx, keys...).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	deltas := make([]Delta, 0, len(opps))
	for i, opp := range opps {
		changeType, oldProfit := compare(opp, cachedValues[i])
		if changeType != ChangeTypeNone {
			deltas = append(deltas, Delta{
				Opportunity: opp,
				ChangeType:  changeType,
				OldProfit:   oldProfit,
			})
		}
	}

	return deltas, nil
}

// DetectNew returns the opportunities of DetectChanges without change details
func (e *Engine) DetectNew(ctx context.Context, opps []models.Opportunity) ([]models.Opportunity, error) {
	deltas, err := e.DetectChanges(ctx, opps)
	if err != nil {
		return nil, err
	}
	changed := make([]models.Opportunity, len(deltas))
	for i, d := range deltas {
		changed[i] = d.Opportunity
	}
	return changed, nil
}

// MarkSeen records opportunities in the cache (write-through pattern).
// Call it after the sinks accepted them.
func (e *Engine) MarkSeen(ctx context.Context, opps []models.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}

	now := time.Now().UTC()
	pipe := e.redis.Pipeline()
	for _, opp := range opps {
		data, err := json.Marshal(CachedOpportunity{
			ProfitPercentage: opp.ProfitPercentage,
			Books:            booksFingerprint(opp),
			SeenAt:           now,
		})
		if err != nil {
			return fmt.Errorf("marshal cached opportunity: %w", err)
		}
		pipe.Set(ctx, BuildKey(opp), data, e.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline exec: %w", err)
	}
	return nil
}

// BuildKey creates the Redis key of an opportunity
// Format: arb:seen:{sport}:{match}
func BuildKey(opp models.Opportunity) string {
	return fmt.Sprintf("arb:seen:%s:%s", opp.Sport, opp.Match)
}

// booksFingerprint encodes the outcome to bookmaker assignment
func booksFingerprint(opp models.Opportunity) string {
	parts := make([]string, len(opp.Bets))
	for i, bet := range opp.Bets {
		parts[i] = bet.Outcome + "=" + bet.BookmakerKey
	}
	return strings.Join(parts, "|")
}

func compare(opp models.Opportunity, cachedValue interface{}) (ChangeType, *float64) {
	if cachedValue == nil {
		return ChangeTypeNew, nil
	}

	cachedStr, ok := cachedValue.(string)
	if !ok {
		// Cache corruption, treat as new
		return ChangeTypeNew, nil
	}

	var cached CachedOpportunity
	if err := json.Unmarshal([]byte(cachedStr), &cached); err != nil {
		return ChangeTypeNew, nil
	}

	oldProfit := cached.ProfitPercentage
	if booksFingerprint(opp) != cached.Books {
		return ChangeTypeBooks, &oldProfit
	}
	if math.Abs(opp.ProfitPercentage-cached.ProfitPercentage) >= profitEpsilon {
		return ChangeTypeProfit, &oldProfit
	}
	return ChangeTypeNone, nil
}
