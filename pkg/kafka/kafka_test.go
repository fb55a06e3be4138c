package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/resilience"
)

type lineEvent struct {
	Text     string `json:"text"`
	Sequence int    `json:"sequence"`
}

func TestDecodeJSON(t *testing.T) {
	ev, err := DecodeJSON[lineEvent]([]byte(`{"text":"Uma linha para teste.","sequence":4}`))
	if err != nil {
		t.Fatal(err)
	}
	if ev.Text != "Uma linha para teste." || ev.Sequence != 4 {
		t.Errorf("unexpected event %+v", ev)
	}
	if _, err := DecodeJSON[lineEvent]([]byte("not json")); err == nil {
		t.Error("expected decode error")
	}
}

func TestEncodeEvent(t *testing.T) {
	msg, err := encodeEvent(Event{Key: "text.txt", Value: lineEvent{Text: "teste", Sequence: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if string(msg.Key) != "text.txt" {
		t.Errorf("expected key text.txt, got %q", msg.Key)
	}
	if string(msg.Value) != `{"text":"teste","sequence":1}` {
		t.Errorf("unexpected value %s", msg.Value)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != contentTypeJSON {
		t.Errorf("expected content-type header, got %+v", msg.Headers)
	}

	if _, err := encodeEvent(Event{Key: "bad", Value: make(chan int)}); err == nil {
		t.Error("expected encoding error for a channel value")
	}
}

func TestDispatchRetriesThenCounts(t *testing.T) {
	calls := 0
	c := &Consumer{
		handler: func(ctx context.Context, key, value []byte) error {
			calls++
			if calls < 2 {
				return errors.New("transient")
			}
			return nil
		},
		retry: resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond},
	}

	if err := c.dispatch(context.Background(), nil, nil); err != nil {
		t.Fatalf("expected success on second attempt, got %v", err)
	}
	if calls != 2 || c.Processed() != 1 || c.Failed() != 0 {
		t.Errorf("calls=%d processed=%d failed=%d", calls, c.Processed(), c.Failed())
	}

	c.handler = func(ctx context.Context, key, value []byte) error { return errors.New("permanent") }
	if err := c.dispatch(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if c.Failed() != 1 {
		t.Errorf("expected 1 failed message, got %d", c.Failed())
	}
}
