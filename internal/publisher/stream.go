package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/Janus/pkg/contracts"
	"github.com/XavierBriggs/Janus/pkg/models"
)

const (
	// GlobalStream receives every opportunity regardless of sport
	GlobalStream    = "arbitrage.detected"
	streamKeyFormat = "arbitrage.detected.%s" // arbitrage.detected.basketball_nba

	defaultMaxLen = 10000
)

// StreamPublisher publishes opportunities to Redis Streams
type StreamPublisher struct {
	redis  *redis.Client
	maxLen int64
}

var _ contracts.OpportunitySink = (*StreamPublisher)(nil)

// NewStreamPublisher creates a Redis Streams publisher
func NewStreamPublisher(redisClient *redis.Client) *StreamPublisher {
	return &StreamPublisher{
		redis:  redisClient,
		maxLen: defaultMaxLen,
	}
}

// StreamKey returns the per-sport stream of an opportunity
func StreamKey(sport string) string {
	return fmt.Sprintf(streamKeyFormat, sport)
}

// Name identifies the sink in logs
func (p *StreamPublisher) Name() string {
	return "redis-stream"
}

// Publish appends every opportunity to its sport stream and the global
// stream in one pipeline
func (p *StreamPublisher) Publish(ctx context.Context, scanID string, opportunities []models.Opportunity) error {
	if len(opportunities) == 0 {
		return nil
	}

	pipe := p.redis.Pipeline()
	for _, msg := range newMessages(scanID, opportunities, time.Now()) {
		msgJSON, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal stream message: %w", err)
		}

		values := map[string]interface{}{
			"sport": msg.Opportunity.Sport,
			"match": msg.Opportunity.Match,
			"data":  msgJSON,
		}
		for _, stream := range []string{StreamKey(msg.Opportunity.Sport), GlobalStream} {
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: stream,
				MaxLen: p.maxLen,
				Approx: true,
				Values: values,
			})
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline exec for stream: %w", err)
	}
	return nil
}
