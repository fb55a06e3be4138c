package concordance

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/keyword"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/postgres"
)

// skipIfNoPostgres skips the test when PostgreSQL is unavailable.
func skipIfNoPostgres(t *testing.T) *postgres.Client {
	t.Helper()
	if os.Getenv("TEST_POSTGRES_HOST") == "" {
		t.Skip("skipping: TEST_POSTGRES_HOST not set")
	}
	port, _ := strconv.Atoi(envOrDefault("TEST_POSTGRES_PORT", "5432"))
	cfg := config.PostgresConfig{
		Host:            os.Getenv("TEST_POSTGRES_HOST"),
		Port:            port,
		Database:        envOrDefault("TEST_POSTGRES_DB", "kwic_test"),
		User:            envOrDefault("TEST_POSTGRES_USER", "kwic"),
		Password:        envOrDefault("TEST_POSTGRES_PASSWORD", "localdev"),
		SSLMode:         "disable",
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}
	db, err := postgres.New(context.Background(), cfg)
	if err != nil {
		t.Skipf("skipping: postgres unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestStoreSave(t *testing.T) {
	db := skipIfNoPostgres(t)
	ctx := context.Background()
	store := NewStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}
	report, _, err := Build([]string{"O sistema é bom.", "Este é outro sistema."}, keyword.NewStopwords("o", "é"))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, report); err != nil {
		t.Fatalf("Save: %v", err)
	}
	n, err := store.CountEntries(ctx, report.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if n != report.ResultCount() {
		t.Errorf("stored %d entries, want %d", n, report.ResultCount())
	}
}
