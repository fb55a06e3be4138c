// Package corpus reads the primary text of a concordance run.
package corpus

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

const maxLineBytes = 4 * 1024 * 1024

// Options controls how raw records become lines.
type Options struct {
	// SkipBlankLines drops empty records, which the engine would reject.
	SkipBlankLines bool
}

// Text is the outcome of reading a source.
type Text struct {
	Lines   []string
	Skipped int
}

// ReadLines splits r into lines. Line terminators (\n or \r\n) are removed.
func ReadLines(r io.Reader, opts Options) (*Text, error) {
	text := &Text{Lines: make([]string, 0, 128)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" && opts.SkipBlankLines {
			text.Skipped++
			continue
		}
		text.Lines = append(text.Lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning text: %w", err)
	}
	return text, nil
}

// ReadFile reads the text at path. Any failure is fatal to the run and is
// reported as ErrSourceUnavailable.
func ReadFile(path string, opts Options) (*Text, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSourceUnavailable, http.StatusServiceUnavailable,
			err, "opening "+path)
	}
	defer f.Close()
	text, err := ReadLines(f, opts)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSourceUnavailable, http.StatusServiceUnavailable,
			err, "reading "+path)
	}
	slog.Default().With("component", "corpus").Info("text loaded",
		"path", path,
		"lines", len(text.Lines),
		"skipped_blank", text.Skipped,
	)
	return text, nil
}
