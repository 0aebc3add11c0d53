// Package kafka publishes lot flags to a review queue topic
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/vsinha/lotrecon/pkg/infrastructure/config"
	"github.com/vsinha/lotrecon/pkg/infrastructure/events"
	"github.com/vsinha/lotrecon/pkg/infrastructure/logging"
)

// messageWriter is the subset of *kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// FlagMessage is the JSON value of a published flag
type FlagMessage struct {
	Lot        string    `json:"lot"`
	Issue      string    `json:"issue"`
	Details    []string  `json:"details,omitempty"`
	Excluded   bool      `json:"excluded"`
	OccurredAt time.Time `json:"occurred_at"`
}

// FlagPublisher buffers lot.flagged events and writes them as one batch on
// Flush. Messages are keyed by lot so a lot's flags share a partition.
type FlagPublisher struct {
	writer  messageWriter
	logger  *slog.Logger
	mu      sync.Mutex
	pending []kafka.Message
}

var (
	_ events.EventHandler = (*FlagPublisher)(nil)
	_ events.Flusher      = (*FlagPublisher)(nil)
)

// NewFlagPublisher creates a publisher for the configured flag topic
func NewFlagPublisher(cfg config.KafkaConfig) *FlagPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.FlagTopic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return newFlagPublisher(w, cfg.FlagTopic)
}

func newFlagPublisher(w messageWriter, topic string) *FlagPublisher {
	return &FlagPublisher{
		writer: w,
		logger: logging.WithComponent("kafka-flag-publisher").With("topic", topic),
	}
}

func (p *FlagPublisher) CanHandle(eventType string) bool {
	return eventType == events.LotFlaggedEvent
}

// Handle encodes the event and queues it for the next Flush
func (p *FlagPublisher) Handle(ctx context.Context, event events.Event) error {
	msg, err := buildMessage(event)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.pending = append(p.pending, msg)
	p.mu.Unlock()
	return nil
}

// Flush writes all queued messages in a single call. On failure the batch
// stays queued.
func (p *FlagPublisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pending) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, p.pending...); err != nil {
		p.logger.Error("failed to publish flags",
			"count", len(p.pending),
			"error", err,
		)
		return fmt.Errorf("publishing flags to kafka: %w", err)
	}
	p.logger.Debug("flags published", "count", len(p.pending))
	p.pending = nil
	return nil
}

// Pending returns the number of queued messages
func (p *FlagPublisher) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Close closes the underlying writer without flushing
func (p *FlagPublisher) Close() error {
	return p.writer.Close()
}

func buildMessage(event events.Event) (kafka.Message, error) {
	data, ok := event.Data().(events.LotFlaggedData)
	if !ok {
		return kafka.Message{}, fmt.Errorf("unexpected payload %T for %s", event.Data(), event.Type())
	}
	value, err := json.Marshal(FlagMessage{
		Lot:        string(data.Lot),
		Issue:      string(data.Issue),
		Details:    data.Details,
		Excluded:   data.Excluded,
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshaling flag message: %w", err)
	}
	return kafka.Message{
		Key:   []byte(data.Lot),
		Value: value,
	}, nil
}
