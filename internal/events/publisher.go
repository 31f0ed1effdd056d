// Package events publishes score-computed events to Kafka for the analytics
// pipeline. Publishing is best effort: failures are logged and never surface
// to scoring callers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Score kinds carried in ScoreEvent.
const (
	KindHealth = "health_score"
	KindChurn  = "churn_risk"
)

// ScoreEvent is the payload emitted once per scored account.
type ScoreEvent struct {
	OrganizationID string    `json:"organization_id"`
	AccountID      string    `json:"account_id"`
	Kind           string    `json:"kind"`
	Score          int       `json:"score"`
	Degraded       bool      `json:"degraded"`
	ComputedAt     time.Time `json:"computed_at"`
}

// Publisher writes score events to a single Kafka topic, keyed by account id
// so per-account ordering is preserved within a partition.
type Publisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{
		writer: writer,
		logger: logger.Named("events"),
	}
}

// Publish writes the given events in one batch.
func (p *Publisher) Publish(ctx context.Context, scoreEvents []ScoreEvent) error {
	if len(scoreEvents) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(scoreEvents))
	for _, e := range scoreEvents {
		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal score event: %w", err)
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(e.AccountID),
			Value: value,
		})
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("write score events: %w", err)
	}

	p.logger.Debug("published score events", zap.Int("count", len(messages)))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
