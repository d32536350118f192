// Package metrics collects and exposes Prometheus metrics for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the subset of Collector used by middleware and services.
type Recorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	RecordTokenCollision()
	RecordRateLimited()
}

// Collector records metrics into a Prometheus registry.
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tokenCollisions prometheus.Counter
	rateLimited     prometheus.Counter
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskmanager_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status_code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskmanager_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		tokenCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmanager_auth_token_collisions_total",
			Help: "Generated auth tokens that were already held by a user.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmanager_rate_limited_requests_total",
			Help: "Requests rejected by the per-user rate limiter.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.requestDuration,
		c.tokenCollisions,
		c.rateLimited,
	)

	return c
}

// RecordRequest records one served request. route should be the router
// pattern, not the raw path, to keep label cardinality bounded.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordTokenCollision counts a token candidate that was already taken.
func (c *Collector) RecordTokenCollision() {
	c.tokenCollisions.Inc()
}

// RecordRateLimited counts a request rejected with 429.
func (c *Collector) RecordRateLimited() {
	c.rateLimited.Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordRequest(string, string, int, time.Duration) {}
func (Nop) RecordTokenCollision()                            {}
func (Nop) RecordRateLimited()                               {}
