package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "streamcast",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "streamcast",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "streamcast",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	tipsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "streamcast",
			Subsystem: "tips",
			Name:      "created_total",
			Help:      "Total number of tip records created.",
		},
	)

	tipsFinalized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "streamcast",
			Subsystem: "tips",
			Name:      "finalized_total",
			Help:      "Total number of tips that reached a terminal status.",
		},
		[]string{"status"},
	)

	tipPollAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "streamcast",
			Subsystem: "tips",
			Name:      "poll_attempts",
			Help:      "Status checks performed before a tip finalized.",
			Buckets:   prometheus.LinearBuckets(1, 3, 10),
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		tipsCreated,
		tipsFinalized,
		tipPollAttempts,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordTipCreated counts a new tip record.
func RecordTipCreated() {
	tipsCreated.Inc()
}

// RecordTipFinalized counts a terminal transition and the checks it took.
func RecordTipFinalized(status string, attempts int) {
	tipsFinalized.WithLabelValues(status).Inc()
	if attempts > 0 {
		tipPollAttempts.Observe(float64(attempts))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Hijack keeps websocket upgrades working through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// canonicalPath collapses id-bearing paths so label cardinality stays bounded.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	switch parts[0] {
	case "streams":
		if len(parts) == 1 {
			return "/streams"
		}
		if len(parts) >= 3 && parts[2] == "chat" {
			if len(parts) >= 4 && parts[3] == "ws" {
				return "/streams/:id/chat/ws"
			}
			return "/streams/:id/chat"
		}
		return "/streams/:id"
	case "users":
		if len(parts) == 1 {
			return "/users"
		}
		if len(parts) >= 3 && parts[2] == "follows" {
			return "/users/:address/follows"
		}
		return "/users/:address"
	case "tips":
		if len(parts) == 1 {
			return "/tips"
		}
		return "/tips/:address"
	default:
		return "/" + parts[0]
	}
}
