// Package middleware holds the HTTP middleware chain wrapped around the kwicd
// mux.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/pkg/metrics"
)

var knownRoutes = map[string]bool{
	"/api/v1/kwic":             true,
	"/api/v1/keywords":         true,
	"/api/v1/lines":            true,
	"/api/v1/stats":            true,
	"/api/v1/cache/stats":      true,
	"/api/v1/cache/invalidate": true,
	"/health/live":             true,
	"/health/ready":            true,
	"/metrics":                 true,
}

// Metrics records request count, latency and in-flight requests, labelled
// by route.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			route := normalizePath(r.URL.Path)
			m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.Status())).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// Status returns the response code, 200 if the handler never set one.
func (s *statusRecorder) Status() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

// normalizePath maps a request path to a bounded route label.
func normalizePath(path string) string {
	if rest, ok := strings.CutPrefix(path, "/api/v1/lines/"); ok && rest != "" {
		return "/api/v1/lines/{n}"
	}
	if knownRoutes[path] {
		return path
	}
	return "other"
}
