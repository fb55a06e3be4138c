package concordance

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/indexer"
)

// FormatResult renders one result as "<keyword>: <keyword> **<right>** <left>".
func FormatResult(r indexer.Result) string {
	return fmt.Sprintf("%s: %s **%s** %s", r.Keyword, r.Keyword, r.RightContext, r.LeftContext)
}

// WriteText renders a report as plain text, one block per keyword.
func WriteText(w io.Writer, report *Report) error {
	bw := bufio.NewWriter(w)
	for _, s := range report.Sections {
		fmt.Fprintf(bw, "=== Results for '%s' ===\n", s.Keyword)
		for _, r := range s.Results {
			fmt.Fprintln(bw, FormatResult(r))
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// WriteJSON renders a report as indented JSON.
func WriteJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// Write dispatches on format ("text" or "json").
func Write(w io.Writer, report *Report, format string) error {
	switch format {
	case "json":
		return WriteJSON(w, report)
	case "text", "":
		return WriteText(w, report)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
