// Package publisher streams the lines of a text source to Kafka for a
// running KWIC service to ingest.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/kafka"
)

const batchSize = 500

// EventPublisher is the subset of the Kafka producer the publisher needs.
type EventPublisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

type Publisher struct {
	producer EventPublisher
	logger   *slog.Logger
}

func New(producer EventPublisher) *Publisher {
	return &Publisher{
		producer: producer,
		logger:   slog.Default().With("component", "line-publisher"),
	}
}

// PublishLines sends lines in order under a single partition key. Empty
// lines are skipped; the consumer would drop them anyway.
func (p *Publisher) PublishLines(ctx context.Context, source string, lines []string) (int, error) {
	now := time.Now().UTC()
	batch := make([]kafka.Event, 0, batchSize)
	published := 0
	skipped := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.producer.PublishBatch(ctx, batch); err != nil {
			return fmt.Errorf("publishing batch ending at sequence %d: %w", published+len(batch)-1, err)
		}
		published += len(batch)
		batch = batch[:0]
		return nil
	}
	for i, line := range lines {
		if line == "" {
			skipped++
			continue
		}
		batch = append(batch, kafka.Event{
			Key: source,
			Value: ingestion.LineEvent{
				Source:     source,
				Sequence:   i,
				Text:       line,
				IngestedAt: now,
			},
		})
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return published, err
			}
		}
	}
	if err := flush(); err != nil {
		return published, err
	}
	p.logger.Info("lines published",
		"source", source,
		"published", published,
		"skipped_empty", skipped,
	)
	return published, nil
}
