package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/XavierBriggs/Janus/pkg/contracts"
	"github.com/XavierBriggs/Janus/pkg/models"
)

// messageWriter is the subset of *kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes opportunities to a Kafka topic keyed by match
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    *zap.Logger
}

var _ contracts.OpportunitySink = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher for a Kafka topic
func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not provided")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic not provided")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
	}

	return &KafkaPublisher{writer: writer, topic: topic, log: log}, nil
}

// Name identifies the sink in logs
func (p *KafkaPublisher) Name() string {
	return "kafka"
}

// Publish sends one JSON message per opportunity. Keying by match keeps the
// updates of one match on one partition.
func (p *KafkaPublisher) Publish(ctx context.Context, scanID string, opportunities []models.Opportunity) error {
	if len(opportunities) == 0 {
		return nil
	}

	now := time.Now()
	msgs := make([]kafka.Message, 0, len(opportunities))
	for _, msg := range newMessages(scanID, opportunities, now) {
		value, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal kafka message: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(msg.Opportunity.Sport + ":" + msg.Opportunity.Match),
			Value: value,
			Time:  now,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.log.Error("failed to publish opportunities", zap.String("topic", p.topic), zap.Error(err))
		return fmt.Errorf("kafka write: %w", err)
	}

	p.log.Debug("published opportunities", zap.String("scan_id", scanID), zap.Int("count", len(msgs)))
	return nil
}

// Close flushes and closes the underlying writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
