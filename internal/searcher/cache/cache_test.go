package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/resilience"
	"github.com/redis/go-redis/v9"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
	fail error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]string)}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", m.fail
	}
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	return nil
}

func (m *memoryStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var n int64
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func sampleResult(gen int) *executor.SearchResult {
	return &executor.SearchResult{
		Keyword:    "para",
		Normalized: "para",
		TotalHits:  1,
		Generation: gen,
		Results: []indexer.Result{{
			LineNumber: 0, Keyword: "para", LeftContext: "uma linha ", RightContext: " teste.", Line: "Uma linha para teste.",
		}},
	}
}

func TestGetOrComputeCachesResult(t *testing.T) {
	c := New(newMemoryStore(), time.Minute, nil)
	ctx := context.Background()
	var calls int
	compute := func() (*executor.SearchResult, error) {
		calls++
		return sampleResult(1), nil
	}

	first, hit, err := c.GetOrCompute(ctx, "para", 10, 1, compute)
	if err != nil || hit {
		t.Fatalf("first call: hit=%v err=%v", hit, err)
	}
	second, hit, err := c.GetOrCompute(ctx, "para", 10, 1, compute)
	if err != nil || !hit {
		t.Fatalf("second call: hit=%v err=%v", hit, err)
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
	if second.Results[0].LeftContext != first.Results[0].LeftContext {
		t.Errorf("cached result differs: %+v", second)
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d/%d, want 1/1", hits, misses)
	}
}

func TestNewGenerationMisses(t *testing.T) {
	c := New(newMemoryStore(), time.Minute, nil)
	ctx := context.Background()
	c.Set(ctx, "para", 10, sampleResult(1))
	if _, ok := c.Get(ctx, "para", 10, 2); ok {
		t.Error("result from generation 1 must not serve generation 2")
	}
	if _, ok := c.Get(ctx, "Para", 10, 1); ok {
		t.Error("keys must keep the caller's casing")
	}
	if _, ok := c.Get(ctx, "para", 10, 1); !ok {
		t.Error("expected hit for matching key")
	}
}

func TestComputeErrorIsReturned(t *testing.T) {
	c := New(newMemoryStore(), time.Minute, nil)
	boom := errors.New("boom")
	_, _, err := c.GetOrCompute(context.Background(), "x", 1, 0, func() (*executor.SearchResult, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestStoreFailureDegradesToCompute(t *testing.T) {
	store := newMemoryStore()
	store.fail = errors.New("connection refused")
	c := New(store, time.Minute, nil)
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		res, hit, err := c.GetOrCompute(ctx, "para", 10, 1, func() (*executor.SearchResult, error) {
			return sampleResult(1), nil
		})
		if err != nil || hit || res == nil {
			t.Fatalf("iteration %d: res=%v hit=%v err=%v", i, res, hit, err)
		}
	}
	if c.BreakerState() != resilience.StateOpen {
		t.Errorf("breaker state = %v, want open", c.BreakerState())
	}
}

func TestSingleflightSharesComputation(t *testing.T) {
	c := New(newMemoryStore(), time.Minute, nil)
	var calls atomic.Int32
	release := make(chan struct{})
	compute := func() (*executor.SearchResult, error) {
		calls.Add(1)
		<-release
		return sampleResult(1), nil
	}
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.GetOrCompute(context.Background(), "para", 10, 1, compute)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	if n := calls.Load(); n < 1 || n > 5 {
		t.Errorf("compute called %d times", n)
	}
}

func TestInvalidate(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Minute, nil)
	ctx := context.Background()
	c.Set(ctx, "para", 10, sampleResult(1))
	store.data["other:key"] = "keep"
	if err := c.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(ctx, "para", 10, 1); ok {
		t.Error("entry should be gone after Invalidate")
	}
	if store.data["other:key"] != "keep" {
		t.Error("Invalidate must only touch kwic keys")
	}
}
