package executor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/keyword"
	apperrors "github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func TestIngestAndSearch(t *testing.T) {
	ctx := context.Background()
	e := New(keyword.NewStopwords("o", "é", "este"), metrics.New(prometheus.NewRegistry()))
	if _, err := e.IngestAll(ctx, []string{"O sistema é bom.", "Este é outro sistema."}, SourceFile); err != nil {
		t.Fatal(err)
	}

	res, err := e.Search(ctx, "Sistema", 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalHits != 2 || len(res.Results) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Normalized != "sistema" || res.Generation != 2 {
		t.Errorf("Normalized = %q, Generation = %d", res.Normalized, res.Generation)
	}
	if res.Results[1].LeftContext != "este é outro " || res.Results[1].Keyword != "Sistema" {
		t.Errorf("unexpected second result %+v", res.Results[1])
	}
}

func TestSearchLimit(t *testing.T) {
	ctx := context.Background()
	e := New(keyword.Stopwords{}, nil)
	for i := 0; i < 5; i++ {
		if _, err := e.Ingest(ctx, fmt.Sprintf("linha %d", i), SourceHTTP); err != nil {
			t.Fatal(err)
		}
	}
	res, err := e.Search(ctx, "linha", 2)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalHits != 5 || len(res.Results) != 2 {
		t.Errorf("TotalHits = %d, returned = %d", res.TotalHits, len(res.Results))
	}
	if res.Results[0].LineNumber != 0 || res.Results[1].LineNumber != 1 {
		t.Errorf("limit should keep the first postings: %+v", res.Results)
	}
}

func TestIngestRejectsEmptyLine(t *testing.T) {
	e := New(keyword.Stopwords{}, metrics.New(prometheus.NewRegistry()))
	if _, err := e.Ingest(context.Background(), "", SourceHTTP); !errors.Is(err, apperrors.ErrEmptyLine) {
		t.Errorf("expected ErrEmptyLine, got %v", err)
	}
	n, err := e.IngestAll(context.Background(), []string{"a", "", "c"}, SourceFile)
	if err == nil || n != 1 {
		t.Errorf("IngestAll = %d, %v; want stop at index 1", n, err)
	}
	if e.Generation() != 1 {
		t.Errorf("Generation() = %d, want 1", e.Generation())
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	e := New(keyword.Stopwords{}, nil)
	if _, err := e.Search(context.Background(), "", 10); !errors.Is(err, apperrors.ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestSearchCancelledContext(t *testing.T) {
	e := New(keyword.Stopwords{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Search(ctx, "x", 1); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestKeywordsAndLine(t *testing.T) {
	ctx := context.Background()
	e := New(keyword.NewStopwords("de"), nil)
	e.Ingest(ctx, "Testes de Software", SourceHTTP)
	if got, want := e.Keywords(), []string{"software", "testes"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keywords() = %v, want %v", got, want)
	}
	line, err := e.Line(0)
	if err != nil || line != "Testes de Software" {
		t.Errorf("Line(0) = %q, %v", line, err)
	}
	if _, err := e.Line(3); !errors.Is(err, apperrors.ErrLineNotFound) {
		t.Errorf("expected ErrLineNotFound, got %v", err)
	}
}

func TestConcurrentIngestAndSearch(t *testing.T) {
	ctx := context.Background()
	e := New(keyword.Stopwords{}, nil)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				e.Ingest(ctx, fmt.Sprintf("writer %d linha %d", w, i), SourceKafka)
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if _, err := e.Search(ctx, "linha", 5); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
	if e.Generation() != 200 {
		t.Errorf("Generation() = %d, want 200", e.Generation())
	}
	res, _ := e.Search(ctx, "linha", 0)
	if res.TotalHits != 200 {
		t.Errorf("TotalHits = %d, want 200", res.TotalHits)
	}
}
