// Package metrics exposes the portal's Prometheus metrics on a private
// registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portail"

// Collector holds every metric vector. It implements devis.Recorder.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	DirectoryDuration   *prometheus.HistogramVec
	SourceFailures      *prometheus.CounterVec
	UpstreamRequests    *prometheus.CounterVec
}

// New registers the collectors on a new registry, with the Go runtime and
// process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status_code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DirectoryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "devis",
			Name:      "directory_query_duration_seconds",
			Help:      "Duration of quote-request directory queries in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type", "status"}),
		SourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "devis",
			Name:      "source_failures_total",
			Help:      "Total number of failed per-kind reads",
		}, []string{"kind"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total number of requests forwarded to the backend API",
		}, []string{"route", "status_code"}),
	}
	reg.MustRegister(
		c.HTTPRequestsTotal,
		c.HTTPRequestDuration,
		c.DirectoryDuration,
		c.SourceFailures,
		c.UpstreamRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the private registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request. route is the mux pattern, not the
// raw path, to keep label cardinality bounded.
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveDirectory records one directory query.
func (c *Collector) ObserveDirectory(typ string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.DirectoryDuration.WithLabelValues(typ, status).Observe(d.Seconds())
}

// SourceFailed counts a failed read of one kind.
func (c *Collector) SourceFailed(kind string) {
	c.SourceFailures.WithLabelValues(kind).Inc()
}

// ObserveUpstream counts one forwarded request. status 0 means the backend
// could not be reached.
func (c *Collector) ObserveUpstream(route string, status int) {
	c.UpstreamRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
