// Package ingestion defines the Kafka event schema used to stream corpus
// lines into a running KWIC service.
package ingestion

import "time"

// LineEvent is the Kafka message payload for one corpus line. Events from
// one source share a partition key, so their order is preserved.
type LineEvent struct {
	Source     string    `json:"source"`
	Sequence   int       `json:"sequence"`
	Text       string    `json:"text"`
	IngestedAt time.Time `json:"ingested_at"`
}
