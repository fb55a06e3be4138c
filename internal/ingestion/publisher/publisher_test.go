package publisher

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/kafka"
)

type recordingProducer struct {
	batches [][]kafka.Event
	err     error
}

func (r *recordingProducer) PublishBatch(_ context.Context, events []kafka.Event) error {
	if r.err != nil {
		return r.err
	}
	r.batches = append(r.batches, append([]kafka.Event(nil), events...))
	return nil
}

func TestPublishLinesKeepsOrderAndKey(t *testing.T) {
	rp := &recordingProducer{}
	p := New(rp)
	n, err := p.PublishLines(context.Background(), "text.txt", []string{"um", "", "dois"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || len(rp.batches) != 1 || len(rp.batches[0]) != 2 {
		t.Fatalf("published %d in %d batches", n, len(rp.batches))
	}
	first := rp.batches[0][0]
	second := rp.batches[0][1].Value.(ingestion.LineEvent)
	if first.Key != "text.txt" {
		t.Errorf("key = %q", first.Key)
	}
	if second.Text != "dois" || second.Sequence != 2 {
		t.Errorf("unexpected event %+v", second)
	}
}

func TestPublishLinesBatches(t *testing.T) {
	rp := &recordingProducer{}
	lines := make([]string, batchSize+3)
	for i := range lines {
		lines[i] = fmt.Sprintf("linha %d", i)
	}
	n, err := New(rp).PublishLines(context.Background(), "src", lines)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(lines) || len(rp.batches) != 2 || len(rp.batches[1]) != 3 {
		t.Errorf("n = %d, batches = %d", n, len(rp.batches))
	}
}

func TestPublishLinesError(t *testing.T) {
	boom := errors.New("broker down")
	_, err := New(&recordingProducer{err: boom}).PublishLines(context.Background(), "src", []string{"x"})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped broker error, got %v", err)
	}
}
