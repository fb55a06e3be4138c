// Package keyword decides which words of a corpus become search queries.
// Stopwords are excluded here only; they are still indexed.
package keyword

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/errors"
)

// Stopwords is an immutable set of lower-cased words. The zero value is an
// empty set.
type Stopwords struct {
	words map[string]struct{}
}

// NewStopwords builds a set from words, lower-casing and trimming each one.
func NewStopwords(words ...string) Stopwords {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w = cleanEntry(w); w != "" {
			set[w] = struct{}{}
		}
	}
	return Stopwords{words: set}
}

// ParseStopwords reads a comma- or newline-delimited list.
func ParseStopwords(r io.Reader) (Stopwords, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		words = append(words, strings.Split(scanner.Text(), ",")...)
	}
	if err := scanner.Err(); err != nil {
		return Stopwords{}, fmt.Errorf("scanning stopwords: %w", err)
	}
	return NewStopwords(words...), nil
}

// LoadStopwords reads the stopword list at path.
func LoadStopwords(path string) (Stopwords, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stopwords{}, apperrors.Wrap(apperrors.ErrStopwordsUnavailable, http.StatusServiceUnavailable,
			err, "opening "+path)
	}
	defer f.Close()
	sw, err := ParseStopwords(f)
	if err != nil {
		return Stopwords{}, apperrors.Wrap(apperrors.ErrStopwordsUnavailable, http.StatusServiceUnavailable,
			err, "reading "+path)
	}
	return sw, nil
}

// LoadStopwordsOrEmpty degrades to an empty set when the list cannot be
// read, logging a warning. The returned error is the load failure, if any,
// so callers can surface it; it is never fatal.
func LoadStopwordsOrEmpty(path string, logger *slog.Logger) (Stopwords, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sw, err := LoadStopwords(path)
	if err != nil {
		logger.Warn("stopword list unavailable, continuing without stopwords",
			"path", path,
			"error", err,
		)
		return Stopwords{}, err
	}
	logger.Info("stopwords loaded", "path", path, "count", sw.Len())
	return sw, nil
}

func (s Stopwords) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

func (s Stopwords) Len() int {
	return len(s.words)
}

// cleanEntry trims whitespace plus the quotes and brackets of JSON-style
// lists, then lower-cases.
func cleanEntry(w string) string {
	w = strings.Trim(w, "\"'[] \t\r\n")
	return strings.ToLower(w)
}
