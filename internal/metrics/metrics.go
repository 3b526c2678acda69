package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routeiq",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"service", "method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "routeiq",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "method", "path", "status"})

	httpInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "routeiq",
		Name:      "http_in_flight_requests",
		Help:      "Current number of in-flight HTTP requests",
	}, []string{"service"})

	routingDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routeiq",
		Name:      "routing_decisions_total",
		Help:      "Total routing decisions made, by winning strategy and provider",
	}, []string{"strategy", "provider"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "routeiq",
		Name:      "response_cache_hits_total",
		Help:      "Total completions served from the response cache",
	})

	retrainRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routeiq",
		Name:      "retrain_runs_total",
		Help:      "Total retraining runs, by outcome",
	}, []string{"outcome"})
)

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Middleware records request metrics with Prometheus labels.
func Middleware(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			httpInFlight.WithLabelValues(service).Inc()
			defer httpInFlight.WithLabelValues(service).Dec()

			next.ServeHTTP(rec, r)

			labels := prometheus.Labels{
				"service": service,
				"method":  r.Method,
				"path":    r.URL.Path,
				"status":  strconv.Itoa(rec.status),
			}

			httpRequests.With(labels).Inc()
			httpLatency.With(labels).Observe(time.Since(start).Seconds())
		})
	}
}

// ObserveDecision counts a routing decision by its winning strategy.
func ObserveDecision(strategy, provider string) {
	routingDecisions.WithLabelValues(strategy, provider).Inc()
}

// ObserveCacheHit counts a completion served from the response cache.
func ObserveCacheHit() {
	cacheHits.Inc()
}

// ObserveRetrain counts a retraining run by outcome ("published",
// "dry_run", "skipped").
func ObserveRetrain(outcome string) {
	retrainRuns.WithLabelValues(outcome).Inc()
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
