// Package indexer ties the line store and the inverted index together into
// the KWIC engine: lines go in, keyword-in-context results come out.
package indexer

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/indexer/linestore"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/errors"
)

// Result is one keyword match on one line. Contexts are taken from the
// lower-cased line; Keyword is the query exactly as the caller passed it.
type Result struct {
	LineNumber   int    `json:"line_number"`
	Keyword      string `json:"keyword"`
	LeftContext  string `json:"left_context"`
	RightContext string `json:"right_context"`
	Line         string `json:"line"`
}

// Stats summarises the engine's contents.
type Stats struct {
	Lines     int   `json:"lines"`
	Terms     int   `json:"terms"`
	Postings  int   `json:"postings"`
	TextBytes int64 `json:"text_bytes"`
	IndexSize int64 `json:"index_size"`
}

// Engine owns the corpus lines and their inverted index. It has a single
// owner; wrap it for concurrent use.
type Engine struct {
	lines    *linestore.Store
	memIndex *index.MemoryIndex
	logger   *slog.Logger
}

func NewEngine() *Engine {
	return &Engine{
		lines:    linestore.New(),
		memIndex: index.NewMemoryIndex(),
		logger:   slog.Default().With("component", "kwic-engine"),
	}
}

// AddLine stores text under the next line number and indexes its words.
// Empty text violates the caller contract and is rejected.
func (e *Engine) AddLine(text string) (int, error) {
	if text == "" {
		return 0, apperrors.Newf(apperrors.ErrEmptyLine, http.StatusBadRequest,
			"cannot add empty line at position %d", e.lines.Len())
	}
	lineNo := e.lines.Append(text)
	terms := tokenizer.Terms(text)
	e.memIndex.Add(lineNo, terms)
	e.logger.Debug("line indexed",
		"line_number", lineNo,
		"token_count", len(terms),
	)
	return lineNo, nil
}

// IndexLine indexes an already-stored line again. Every call appends
// another posting per term, so a later search visits the line once more.
func (e *Engine) IndexLine(lineNo int) error {
	text, ok := e.lines.Get(lineNo)
	if !ok {
		return apperrors.Newf(apperrors.ErrLineNotFound, http.StatusNotFound,
			"line %d out of range [0,%d)", lineNo, e.lines.Len())
	}
	e.memIndex.Add(lineNo, tokenizer.Terms(text))
	return nil
}

// Line returns the original text of line n.
func (e *Engine) Line(n int) (string, error) {
	text, ok := e.lines.Get(n)
	if !ok {
		return "", apperrors.Newf(apperrors.ErrLineNotFound, http.StatusNotFound,
			"line %d out of range [0,%d)", n, e.lines.Len())
	}
	return text, nil
}

func (e *Engine) LineCount() int {
	return e.lines.Len()
}

// SearchKeyword returns one result per posting of the normalised query, in
// posting order. Only the first occurrence on each line is reported. A
// posting whose line no longer contains the normalised query as a substring
// is skipped. An unknown keyword yields an empty, non-nil slice.
func (e *Engine) SearchKeyword(query string) ([]Result, error) {
	if query == "" {
		return nil, apperrors.New(apperrors.ErrEmptyQuery, http.StatusBadRequest,
			"keyword must not be empty")
	}
	normalized := tokenizer.Normalize(query)
	postings := e.memIndex.Lookup(normalized)
	results := make([]Result, 0, len(postings))
	for _, lineNo := range postings {
		line, ok := e.lines.Get(lineNo)
		if !ok {
			continue
		}
		lower := strings.ToLower(line)
		pos := strings.Index(lower, normalized)
		if pos < 0 {
			e.logger.Debug("indexed keyword not found on rescan",
				"keyword", normalized,
				"line_number", lineNo,
			)
			continue
		}
		results = append(results, Result{
			LineNumber:   lineNo,
			Keyword:      query,
			LeftContext:  lower[:pos],
			RightContext: lower[pos+len(normalized):],
			Line:         line,
		})
	}
	return results, nil
}

// Terms returns every indexed term in ascending order, including the empty
// term produced by tokens without letters.
func (e *Engine) Terms() []string {
	return e.memIndex.Terms()
}

// Postings returns a copy of the line numbers recorded for the normalised
// form of word.
func (e *Engine) Postings(word string) index.PostingList {
	return append(index.PostingList(nil), e.memIndex.Lookup(tokenizer.Normalize(word))...)
}

func (e *Engine) Stats() Stats {
	return Stats{
		Lines:     e.lines.Len(),
		Terms:     e.memIndex.TermCount(),
		Postings:  e.memIndex.PostingCount(),
		TextBytes: e.lines.Size(),
		IndexSize: e.memIndex.Size(),
	}
}
