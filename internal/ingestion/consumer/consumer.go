// Package consumer reads line events from Kafka and feeds them to the
// executor in arrival order.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/kafka"
)

// LineIngester accepts one line at a time.
type LineIngester interface {
	Ingest(ctx context.Context, text, source string) (int, error)
}

// HandleMessage returns a Kafka MessageHandler that ingests every line
// event. Undecodable events and empty lines are logged and acknowledged so
// they do not block the partition.
func HandleMessage(target LineIngester) kafka.MessageHandler {
	logger := slog.Default().With("component", "line-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.LineEvent](value)
		if err != nil {
			logger.Error("failed to decode line event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		lineNo, err := target.Ingest(ctx, event.Text, executor.SourceKafka)
		if err != nil {
			if errors.Is(err, apperrors.ErrInvalidInput) {
				logger.Warn("line event rejected",
					"source", event.Source,
					"sequence", event.Sequence,
					"error", err,
				)
				return nil
			}
			return fmt.Errorf("ingesting %s#%d: %w", event.Source, event.Sequence, err)
		}
		logger.Debug("line ingested",
			"source", event.Source,
			"sequence", event.Sequence,
			"line_number", lineNo,
		)
		return nil
	}
}
