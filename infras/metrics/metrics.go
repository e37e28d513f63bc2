package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"cnpgdemo/config"
)

const (
	labelMethod    = "method"
	labelEndpoint  = "endpoint"
	labelStatus    = "status"
	labelOperation = "operation"
	labelNode      = "node"
)

// Recorder is the write side of the service metrics.
type Recorder interface {
	ObserveRequest(method, endpoint string, status int, elapsed time.Duration)
	ObserveDBOperation(operation, node string, elapsed time.Duration)
	Enabled() bool
	Handler() http.Handler
}

// Collector is a prometheus.Collector for the HTTP and database timings.
type Collector struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	dbOperationLatency *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New returns a Collector registered on its own registry, or a no-op
// recorder when metrics are disabled.
func New(cfg *config.Config) Recorder {
	if !cfg.App.EnableMetrics {
		log.Info().Msg("Metrics disabled")

		return NewNoop()
	}

	return NewCollector()
}

func NewCollector() *Collector {
	c := &Collector{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			}, []string{labelMethod, labelEndpoint, labelStatus},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			}, []string{labelMethod, labelEndpoint},
		),
		dbOperationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_operation_duration_seconds",
				Help:    "Database operation latency in seconds.",
				Buckets: prometheus.DefBuckets,
			}, []string{labelOperation, labelNode},
		),
		registry: prometheus.NewRegistry(),
	}

	c.registry.MustRegister(
		c,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.requestsTotal.Describe(ch)
	c.requestDuration.Describe(ch)
	c.dbOperationLatency.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.requestsTotal.Collect(ch)
	c.requestDuration.Collect(ch)
	c.dbOperationLatency.Collect(ch)
}

func (c *Collector) ObserveRequest(method, endpoint string, status int, elapsed time.Duration) {
	c.requestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveDBOperation(operation, node string, elapsed time.Duration) {
	c.dbOperationLatency.WithLabelValues(operation, node).Observe(elapsed.Seconds())
}

func (c *Collector) Enabled() bool {
	return true
}

// Handler serves the text exposition format for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry is exposed for tests and for anything else that wants to gather directly.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

type noop struct{}

func NewNoop() Recorder {
	return noop{}
}

func (noop) ObserveRequest(string, string, int, time.Duration) {}

func (noop) ObserveDBOperation(string, string, time.Duration) {}

func (noop) Enabled() bool {
	return false
}

func (noop) Handler() http.Handler {
	return http.NotFoundHandler()
}
