package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/concordance"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/keyword"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	textPath := flag.String("text", "", "text file to index (overrides corpus.textPath)")
	stopPath := flag.String("stopwords", "", "stopword list (overrides corpus.stopwordsPath)")
	format := flag.String("format", "text", "output format: text or json")
	export := flag.Bool("export", false, "store the report in PostgreSQL")
	publish := flag.Bool("publish", false, "publish the text lines to Kafka for kwicd")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *textPath != "" {
		cfg.Corpus.TextPath = *textPath
	}
	if *stopPath != "" {
		cfg.Corpus.StopwordsPath = *stopPath
	}
	if *export {
		cfg.Export.Enabled = true
	}

	// stdout carries the report, so logs go to stderr.
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *format, *publish); err != nil {
		slog.Error("kwic run failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, format string, publish bool) error {
	stopwords, err := keyword.LoadStopwordsOrEmpty(cfg.Corpus.StopwordsPath, slog.Default())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; continuing without stopwords\n", err)
	}

	text, err := corpus.ReadFile(cfg.Corpus.TextPath, corpus.Options{
		SkipBlankLines: cfg.Corpus.SkipBlankLines,
	})
	if err != nil {
		return err
	}

	report, _, err := concordance.Build(text.Lines, stopwords)
	if err != nil {
		return fmt.Errorf("building concordance: %w", err)
	}
	if err := concordance.Write(os.Stdout, report, format); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if cfg.Export.Enabled {
		if err := exportReport(ctx, cfg.Postgres, report); err != nil {
			return err
		}
	}
	if publish {
		if err := publishLines(ctx, cfg.Kafka, cfg.Corpus.TextPath, text.Lines); err != nil {
			return err
		}
	}
	return nil
}

func exportReport(ctx context.Context, cfg config.PostgresConfig, report *concordance.Report) error {
	db, err := postgres.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	store := concordance.NewStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := store.Save(ctx, report); err != nil {
		return err
	}
	slog.Info("report exported",
		"run_id", report.RunID,
		"database", cfg.Database,
		"entries", report.ResultCount(),
	)
	return nil
}

func publishLines(ctx context.Context, cfg config.KafkaConfig, path string, lines []string) error {
	producer := kafka.NewProducer(cfg, cfg.Topics.LineIngest)
	defer producer.Close()

	n, err := publisher.New(producer).PublishLines(ctx, filepath.Base(path), lines)
	if err != nil {
		return fmt.Errorf("publishing lines: %w", err)
	}
	slog.Info("corpus published", "topic", cfg.Topics.LineIngest, "lines", n)
	return nil
}
