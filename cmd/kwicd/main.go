package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/ingestion/consumer"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/keyword"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/ratelimit"
	pkgredis "github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	configPath := flag.String("config", "configs/kwicd.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	slog.Info("starting kwic service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, prometheus.DefaultGatherer)
		defer shutdownMetrics(context.Background())
	}

	stopwords, _ := keyword.LoadStopwordsOrEmpty(cfg.Corpus.StopwordsPath, slog.Default())
	exec := executor.New(stopwords, m)

	if cfg.Corpus.TextPath != "" {
		text, err := corpus.ReadFile(cfg.Corpus.TextPath, corpus.Options{
			SkipBlankLines: cfg.Corpus.SkipBlankLines,
		})
		if err != nil {
			slog.Error("failed to load seed text", "error", err)
			os.Exit(1)
		}
		n, err := exec.IngestAll(ctx, text.Lines, executor.SourceFile)
		if err != nil {
			slog.Error("failed to index seed text", "error", err, "indexed", n)
			os.Exit(1)
		}
		slog.Info("seed text indexed", "path", cfg.Corpus.TextPath, "lines", n)
	}

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var lineConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		lineConsumer = kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.LineIngest, consumer.HandleMessage(exec))
		go func() {
			if err := lineConsumer.Start(ctx); err != nil {
				slog.Error("line consumer error", "error", err)
			}
		}()
		slog.Info("line consumer started",
			"topic", cfg.Kafka.Topics.LineIngest,
			"group", cfg.Kafka.ConsumerGroup,
		)
	}

	checker := health.NewChecker()
	checker.Register("kwic_engine", func(ctx context.Context) health.ComponentHealth {
		stats := exec.Stats()
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d lines, %d terms", stats.Lines, stats.Terms),
		}
	})
	if redisClient != nil {
		checker.Register("redis", health.PingCheck(redisClient.Ping, false))
	}
	if lineConsumer != nil {
		checker.Register("kafka_consumer", func(ctx context.Context) health.ComponentHealth {
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("lag %d, processed %d, failed %d",
					lineConsumer.Lag(), lineConsumer.Processed(), lineConsumer.Failed()),
			}
		})
	}

	h := handler.New(exec, queryCache, m, cfg.Search.DefaultLimit, cfg.Search.MaxResults)

	mux := http.NewServeMux()
	h.Routes(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	if !cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if cfg.Server.WriteRateLimit > 0 {
		limiter := ratelimit.New(cfg.Server.WriteRateLimit, time.Minute)
		go limiter.RunPruner(ctx, 5*time.Minute)
		chain = middleware.RateLimit(limiter)(chain)
	}
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("kwic service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("kwic service stopped")
}
