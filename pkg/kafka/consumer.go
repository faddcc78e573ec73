// Package kafka carries text documents between the publish command and the
// server's indexing consumer, using segmentio/kafka-go with JSON payloads.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/resilience"
)

// MessageHandler processes one message. A non-nil error is retried with
// backoff; a message that still fails is left uncommitted.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// fetcher is the part of *kafka.Reader the consume loop needs.
type fetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer feeds messages from one topic to a MessageHandler, in partition
// order.
type Consumer struct {
	reader     fetcher
	logger     *slog.Logger
	handler    MessageHandler
	retry      resilience.RetryConfig
	fetchPause time.Duration
}

// NewConsumer creates a group consumer for topic. A new group starts from
// the oldest retained message so documents published before the server came
// up are still indexed.
func NewConsumer(cfg config.KafkaConfig, topic string, handler MessageHandler) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	return newConsumer(r, topic, handler)
}

func newConsumer(r fetcher, topic string, handler MessageHandler) *Consumer {
	return &Consumer{
		reader:  r,
		logger:  slog.Default().With("component", "kafka-consumer", "topic", topic),
		handler: handler,
		retry: resilience.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
		},
		fetchPause: time.Second,
	}
}

// Start runs the consume loop until ctx is cancelled, then closes the
// reader. It returns nil on cancellation.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", "reason", ctx.Err())
				return nil
			}
			c.logger.Error("failed to fetch message", "error", err)
			if !sleep(ctx, c.fetchPause) {
				c.logger.Info("consumer stopping", "reason", ctx.Err())
				return nil
			}
			continue
		}
		c.process(ctx, msg)
	}
}

// process hands msg to the handler and commits it once handled.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	log := c.logger.With(
		"partition", msg.Partition,
		"offset", msg.Offset,
		"key", string(msg.Key),
	)
	log.Debug("message received", "value_size", len(msg.Value))

	err := resilience.Retry(ctx, "kafka-handler", c.retry, func() error {
		return c.handler(ctx, msg.Key, msg.Value)
	})
	if err != nil {
		log.Error("giving up on message", "error", err)
		return
	}
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		log.Error("failed to commit message", "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// DecodeJSON unmarshals a message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
