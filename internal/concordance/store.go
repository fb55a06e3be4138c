package concordance

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/postgres"
	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS kwic_runs (
	id           UUID PRIMARY KEY,
	generated_at TIMESTAMPTZ NOT NULL,
	line_count   INTEGER NOT NULL,
	keyword_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS kwic_entries (
	run_id        UUID NOT NULL REFERENCES kwic_runs(id) ON DELETE CASCADE,
	keyword       TEXT NOT NULL,
	line_number   INTEGER NOT NULL,
	left_context  TEXT NOT NULL,
	right_context TEXT NOT NULL,
	line          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS kwic_entries_run_keyword ON kwic_entries (run_id, keyword);
`

// Store exports concordance reports to PostgreSQL.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "concordance-store"),
	}
}

// EnsureSchema creates the report tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating concordance schema: %w", err)
	}
	return nil
}

// Save writes the run header and every result row in one transaction,
// bulk-loading rows with COPY.
func (s *Store) Save(ctx context.Context, report *Report) error {
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO kwic_runs (id, generated_at, line_count, keyword_count) VALUES ($1, $2, $3, $4)`,
			report.RunID, report.GeneratedAt, report.Lines, report.Keywords,
		); err != nil {
			return fmt.Errorf("inserting run: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("kwic_entries",
			"run_id", "keyword", "line_number", "left_context", "right_context", "line"))
		if err != nil {
			return fmt.Errorf("preparing copy: %w", err)
		}
		for _, section := range report.Sections {
			for _, r := range section.Results {
				if _, err := stmt.ExecContext(ctx,
					report.RunID, section.Keyword, r.LineNumber, r.LeftContext, r.RightContext, r.Line,
				); err != nil {
					stmt.Close()
					return fmt.Errorf("copying entry for %q: %w", section.Keyword, err)
				}
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			stmt.Close()
			return fmt.Errorf("flushing copy: %w", err)
		}
		return stmt.Close()
	})
	if err != nil {
		return fmt.Errorf("saving report %s: %w", report.RunID, err)
	}
	s.logger.Info("report exported",
		"run_id", report.RunID,
		"entries", report.ResultCount(),
	)
	return nil
}

// CountEntries returns the number of rows stored for a run.
func (s *Store) CountEntries(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM kwic_entries WHERE run_id = $1`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting entries for %s: %w", runID, err)
	}
	return n, nil
}
