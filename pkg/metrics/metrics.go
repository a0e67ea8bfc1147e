// Package metrics collects Prometheus metrics for SServer.
// A Collector holds the request, connection and parse-error series; the middleware and server
// packages feed it, and the admin package exposes its registry.
package metrics

import (
	"math/rand"

	"github.com/Suhaibinator/SServer/pkg/common"
)

// MetricsFilter determines whether to collect metrics for a request
type MetricsFilter interface {
	// Filter returns true if metrics should be collected for the request
	Filter(req *common.Request) bool
}

// FilterFunc adapts a function to the MetricsFilter interface
type FilterFunc func(req *common.Request) bool

// Filter calls f(req)
func (f FilterFunc) Filter(req *common.Request) bool {
	return f(req)
}

// MetricsSampler samples metrics at a given rate
type MetricsSampler interface {
	// Sample returns true if the metric should be sampled
	Sample() bool
}

// randomSampler is a simple implementation of MetricsSampler
type randomSampler struct {
	rate float64
}

// NewRandomSampler creates a new random sampler with the given rate.
// The rate is clamped to [0, 1].
func NewRandomSampler(rate float64) MetricsSampler {
	if rate < 0.0 {
		rate = 0.0
	}
	if rate > 1.0 {
		rate = 1.0
	}
	return &randomSampler{
		rate: rate,
	}
}

// Sample returns true if the metric should be sampled
func (s *randomSampler) Sample() bool {
	// Always sample if rate is 1.0
	if s.rate >= 1.0 {
		return true
	}
	// Never sample if rate is 0.0
	if s.rate <= 0.0 {
		return false
	}
	return rand.Float64() < s.rate
}

// CollectorConfig configures the series a Collector registers
type CollectorConfig struct {
	// Namespace and Subsystem prefix every metric name
	Namespace string
	Subsystem string

	// LatencyBuckets defines the buckets for the request duration histogram.
	// Defaults to DefaultLatencyBuckets.
	LatencyBuckets []float64

	// ConstLabels are added to all metrics
	ConstLabels map[string]string
}

// DefaultLatencyBuckets are the request duration buckets in seconds
var DefaultLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
