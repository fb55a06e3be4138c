// Package executor serves KWIC queries from a shared engine. The engine has
// a single writer; Executor adds the read/write discipline that lets HTTP
// handlers and the Kafka consumer use it at the same time.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/keyword"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/tracing"
)

// Line sources used for metrics labels.
const (
	SourceFile  = "file"
	SourceHTTP  = "http"
	SourceKafka = "kafka"
)

type SearchResult struct {
	Keyword    string           `json:"keyword"`
	Normalized string           `json:"normalized"`
	TotalHits  int              `json:"total_hits"`
	Results    []indexer.Result `json:"results"`
	Generation int              `json:"generation"`
}

type Executor struct {
	mu       sync.RWMutex
	engine   *indexer.Engine
	keywords *keyword.Collector
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates an Executor over an empty engine. m may be nil.
func New(stop keyword.Stopwords, m *metrics.Metrics) *Executor {
	return &Executor{
		engine:   indexer.NewEngine(),
		keywords: keyword.NewCollector(stop),
		metrics:  m,
		logger:   slog.Default().With("component", "query-executor"),
	}
}

// Ingest adds one line and returns its line number.
func (e *Executor) Ingest(ctx context.Context, text, source string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	e.mu.Lock()
	lineNo, err := e.engine.AddLine(text)
	if err == nil {
		e.keywords.AddLine(text)
	}
	stats := e.engine.Stats()
	e.mu.Unlock()

	if err != nil {
		if e.metrics != nil {
			e.metrics.LinesRejectedTotal.Inc()
		}
		return 0, err
	}
	if e.metrics != nil {
		e.metrics.LinesIndexedTotal.WithLabelValues(source).Inc()
		e.metrics.IndexedLines.Set(float64(stats.Lines))
		e.metrics.IndexedTerms.Set(float64(stats.Terms))
	}
	return lineNo, nil
}

// IngestAll adds lines in order and stops at the first rejected line.
func (e *Executor) IngestAll(ctx context.Context, lines []string, source string) (int, error) {
	for i, line := range lines {
		if _, err := e.Ingest(ctx, line, source); err != nil {
			return i, fmt.Errorf("ingesting line %d: %w", i, err)
		}
	}
	e.logger.Info("lines ingested", "count", len(lines), "source", source)
	return len(lines), nil
}

// Search runs a keyword query. TotalHits counts every result; Results is
// cut to limit when limit > 0.
func (e *Executor) Search(ctx context.Context, kw string, limit int) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, span := tracing.Start(ctx, "engine.search", "")
	defer span.Finish(e.logger)

	e.mu.RLock()
	results, err := e.engine.SearchKeyword(kw)
	generation := e.engine.LineCount()
	e.mu.RUnlock()
	if err != nil {
		e.observe("error", 0)
		return nil, err
	}

	total := len(results)
	if limit > 0 && total > limit {
		results = results[:limit]
	}
	resultType := "hit"
	if total == 0 {
		resultType = "zero_result"
	}
	e.observe(resultType, total)
	span.SetAttr("total_hits", total)
	e.logger.Debug("keyword searched",
		"keyword", kw,
		"total_hits", total,
		"returned", len(results),
		"generation", generation,
	)
	return &SearchResult{
		Keyword:    kw,
		Normalized: tokenizer.Normalize(kw),
		TotalHits:  total,
		Results:    results,
		Generation: generation,
	}, nil
}

func (e *Executor) observe(resultType string, total int) {
	if e.metrics == nil {
		return
	}
	e.metrics.KeywordSearchesTotal.WithLabelValues(resultType).Inc()
	if resultType != "error" {
		e.metrics.SearchResultsCount.Observe(float64(total))
	}
}

func (e *Executor) Line(n int) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.engine.Line(n)
}

// Keywords returns the distinct non-stopword tokens seen so far, sorted.
func (e *Executor) Keywords() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.keywords.Sorted()
}

func (e *Executor) Stats() indexer.Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.engine.Stats()
}

// Generation is the number of lines ingested. It changes whenever search
// results may change.
func (e *Executor) Generation() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.engine.LineCount()
}
