package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/tracing"
)

const maxIngestBody = 8 << 20

type SearchExecutor interface {
	Search(ctx context.Context, keyword string, limit int) (*executor.SearchResult, error)
	Ingest(ctx context.Context, text, source string) (int, error)
	Line(n int) (string, error)
	Keywords() []string
	Stats() indexer.Stats
	Generation() int
}

type Handler struct {
	executor     SearchExecutor
	cache        *cache.QueryCache
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// IngestRequest is the body of POST /api/v1/lines.
type IngestRequest struct {
	Lines []string `json:"lines"`
}

type IngestResponse struct {
	LineNumbers []int `json:"line_numbers"`
}

// New creates a Handler. queryCache and m may be nil.
func New(exec SearchExecutor, queryCache *cache.QueryCache, m *metrics.Metrics, defaultLimit, maxResults int) *Handler {
	return &Handler{
		executor:     exec,
		cache:        queryCache,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "kwic-handler"),
	}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/kwic", h.Search)
	mux.HandleFunc("GET /api/v1/keywords", h.Keywords)
	mux.HandleFunc("POST /api/v1/lines", h.IngestLines)
	mux.HandleFunc("GET /api/v1/lines/{n}", h.GetLine)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := tracing.Start(r.Context(), "kwic.search", middleware.GetRequestID(r.Context()))
	defer span.Finish(h.logger)
	log := logger.FromContext(ctx)

	kw := r.URL.Query().Get("keyword")
	if kw == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'keyword' is required")
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	var result *executor.SearchResult
	var err error
	cacheHit := false

	if h.cache != nil {
		generation := h.executor.Generation()
		result, cacheHit, err = h.cache.GetOrCompute(ctx, kw, limit, generation, func() (*executor.SearchResult, error) {
			return h.executor.Search(ctx, kw, limit)
		})
	} else {
		result, err = h.executor.Search(ctx, kw, limit)
	}

	if err != nil {
		log.Error("keyword search failed", "keyword", kw, "error", err)
		h.writeAppError(w, err)
		return
	}

	span.SetAttr("cache_hit", cacheHit)
	latency := time.Since(start)
	if h.metrics != nil {
		status := "miss"
		if h.cache == nil {
			status = "disabled"
		} else if cacheHit {
			status = "hit"
		}
		h.metrics.SearchLatency.WithLabelValues(status).Observe(latency.Seconds())
	}
	log.Info("keyword search completed",
		"keyword", kw,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Keywords(w http.ResponseWriter, r *http.Request) {
	keywords := h.executor.Keywords()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(keywords),
		"keywords": keywords,
	})
}

func (h *Handler) IngestLines(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req IngestRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIngestBody)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Lines) == 0 {
		h.writeError(w, http.StatusBadRequest, "lines must not be empty")
		return
	}
	for i, line := range req.Lines {
		if line == "" {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("lines[%d] is empty", i))
			return
		}
	}
	resp := IngestResponse{LineNumbers: make([]int, 0, len(req.Lines))}
	for _, line := range req.Lines {
		n, err := h.executor.Ingest(ctx, line, executor.SourceHTTP)
		if err != nil {
			logger.FromContext(ctx).Error("line ingestion failed", "error", err)
			h.writeAppError(w, err)
			return
		}
		resp.LineNumbers = append(resp.LineNumbers, n)
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetLine(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "line number must be an integer")
		return
	}
	text, err := h.executor.Line(n)
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"line_number": n,
		"line":        text,
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.executor.Stats())
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
		"breaker":  h.cache.BreakerState().String(),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
}
