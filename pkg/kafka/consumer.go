// Package kafka wraps segmentio/kafka-go for the line ingest topic: a JSON
// Producer used by the CLI and a group Consumer used by kwicd.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/resilience"
	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one message. A returned error is retried with
// backoff before the message is skipped.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer reads one topic as part of a consumer group and hands messages to
// a MessageHandler in partition order.
type Consumer struct {
	reader    *kafka.Reader
	handler   MessageHandler
	retry     resilience.RetryConfig
	processed atomic.Int64
	failed    atomic.Int64
	logger    *slog.Logger
}

// NewConsumer creates a Consumer for topic. A new group starts from the
// oldest retained message so a fresh service replays the whole corpus.
func NewConsumer(cfg config.KafkaConfig, topic string, handler MessageHandler) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			Topic:       topic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    1e3,
			MaxBytes:    10e6,
			StartOffset: kafka.FirstOffset,
		}),
		handler: handler,
		retry: resilience.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
		},
		logger: slog.Default().With("component", "kafka-consumer", "topic", topic),
	}
}

// Start consumes until ctx is cancelled, then closes the reader. Each
// message is committed once handled or given up on, so one bad line never
// stalls its partition.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.logger.Warn("closing reader", "error", err)
		}
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", "reason", ctx.Err())
				return nil
			}
			c.logger.Error("fetch failed", "error", err)
			continue
		}

		if err := c.dispatch(ctx, msg.Key, msg.Value); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("message skipped",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

// dispatch runs the handler under the retry policy and updates counters.
func (c *Consumer) dispatch(ctx context.Context, key, value []byte) error {
	err := resilience.Retry(ctx, "kafka-handler", c.retry, func() error {
		return c.handler(ctx, key, value)
	})
	if err != nil {
		c.failed.Add(1)
		return err
	}
	c.processed.Add(1)
	return nil
}

// Processed returns the number of messages handled successfully.
func (c *Consumer) Processed() int64 { return c.processed.Load() }

// Failed returns the number of messages skipped after retries.
func (c *Consumer) Failed() int64 { return c.failed.Load() }

// Lag returns the reader's lag as of the last fetch.
func (c *Consumer) Lag() int64 {
	return c.reader.Stats().Lag
}

// DecodeJSON unmarshals a message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
