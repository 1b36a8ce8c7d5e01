// Package publisher fans detected opportunities out to Redis Streams and Kafka.
package publisher

import (
	"time"

	"github.com/XavierBriggs/Janus/pkg/models"
)

// Message is the payload published for one opportunity
type Message struct {
	ScanID      string             `json:"scan_id"`
	DetectedAt  time.Time          `json:"detected_at"`
	Opportunity models.Opportunity `json:"opportunity"`
}

func newMessages(scanID string, opportunities []models.Opportunity, now time.Time) []Message {
	msgs := make([]Message, len(opportunities))
	for i, opp := range opportunities {
		msgs[i] = Message{ScanID: scanID, DetectedAt: now.UTC(), Opportunity: opp}
	}
	return msgs
}
