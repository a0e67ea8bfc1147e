package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Suhaibinator/SServer/pkg/common"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the server's Prometheus series. It is safe for concurrent use.
type Collector struct {
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	responseBytes  *prometheus.CounterVec
	connections    prometheus.Gauge
	connectionsAll prometheus.Counter
	parseErrors    prometheus.Counter
}

// NewCollector creates the series and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer, config CollectorConfig) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	buckets := config.LatencyBuckets
	if len(buckets) == 0 {
		buckets = DefaultLatencyBuckets
	}
	labels := prometheus.Labels(config.ConstLabels)

	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of requests answered, by method and status code.",
			ConstLabels: labels,
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Time spent producing a response, by method.",
			Buckets:     buckets,
			ConstLabels: labels,
		}, []string{"method"}),
		responseBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "response_body_bytes_total",
			Help:        "Total response body bytes, by method.",
			ConstLabels: labels,
		}, []string{"method"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_connections",
			Help:        "Number of open client connections.",
			ConstLabels: labels,
		}),
		connectionsAll: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "connections_total",
			Help:        "Total number of accepted client connections.",
			ConstLabels: labels,
		}),
		parseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "parse_errors_total",
			Help:        "Total number of requests rejected with 400 because they could not be parsed.",
			ConstLabels: labels,
		}),
	}

	for _, col := range []prometheus.Collector{
		c.requests, c.duration, c.responseBytes, c.connections, c.connectionsAll, c.parseErrors,
	} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return c, nil
}

// ObserveRequest records one answered request.
func (c *Collector) ObserveRequest(method common.Method, status common.StatusCode, duration time.Duration, bodyBytes int) {
	c.requests.WithLabelValues(method.String(), strconv.Itoa(status.Code())).Inc()
	c.duration.WithLabelValues(method.String()).Observe(duration.Seconds())
	c.responseBytes.WithLabelValues(method.String()).Add(float64(bodyBytes))
}

// ConnectionOpened records an accepted connection.
func (c *Collector) ConnectionOpened() {
	c.connections.Inc()
	c.connectionsAll.Inc()
}

// ConnectionClosed records a closed connection.
func (c *Collector) ConnectionClosed() {
	c.connections.Dec()
}

// ParseError records a request that could not be parsed.
func (c *Collector) ParseError() {
	c.parseErrors.Inc()
}
