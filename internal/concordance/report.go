// Package concordance runs a full-corpus KWIC pass: every line is indexed,
// every distinct non-stopword becomes a query, and the queries run in
// alphabetical order so output is reproducible.
package concordance

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/keyword"
	"github.com/google/uuid"
)

// Section holds the results of one keyword query.
type Section struct {
	Keyword string           `json:"keyword"`
	Results []indexer.Result `json:"results"`
}

// Report is the complete concordance of a corpus.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Lines       int       `json:"lines"`
	Keywords    int       `json:"keywords"`
	Sections    []Section `json:"sections"`
}

// ResultCount is the number of result rows across all sections.
func (r *Report) ResultCount() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Results)
	}
	return n
}

// Build indexes lines into a fresh engine and searches every keyword. The
// engine is returned so callers can keep querying it.
func Build(lines []string, stop keyword.Stopwords) (*Report, *indexer.Engine, error) {
	logger := slog.Default().With("component", "concordance")
	engine := indexer.NewEngine()
	collector := keyword.NewCollector(stop)
	for i, line := range lines {
		if _, err := engine.AddLine(line); err != nil {
			return nil, nil, fmt.Errorf("adding line %d: %w", i, err)
		}
		collector.AddLine(line)
	}

	keywords := collector.Sorted()
	report := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Lines:       engine.LineCount(),
		Keywords:    len(keywords),
		Sections:    make([]Section, 0, len(keywords)),
	}
	for _, kw := range keywords {
		results, err := engine.SearchKeyword(kw)
		if err != nil {
			return nil, nil, fmt.Errorf("searching keyword %q: %w", kw, err)
		}
		report.Sections = append(report.Sections, Section{Keyword: kw, Results: results})
	}
	logger.Info("concordance built",
		"run_id", report.RunID,
		"lines", report.Lines,
		"keywords", report.Keywords,
		"results", report.ResultCount(),
	)
	return report, engine, nil
}
