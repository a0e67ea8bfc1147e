package middleware

import (
	"time"

	"github.com/Suhaibinator/SServer/pkg/common"
	"github.com/Suhaibinator/SServer/pkg/metrics"
	"github.com/Suhaibinator/SServer/pkg/state"
)

// MetricsConfig configures the Metrics middleware
type MetricsConfig struct {
	// Filter skips requests it returns false for (optional)
	Filter metrics.MetricsFilter

	// SamplingRate is the fraction of requests recorded (0.0-1.0). Zero records every request.
	SamplingRate float64
}

// Metrics records every response that passes through it in collector
func Metrics(collector *metrics.Collector, config MetricsConfig) Middleware {
	rate := config.SamplingRate
	if rate == 0 {
		rate = 1
	}
	sampler := metrics.NewRandomSampler(rate)

	return common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) *common.Response {
		// Check if we should collect metrics for this request
		if config.Filter != nil && !config.Filter.Filter(req) {
			return next.Handle(req, st)
		}

		// Check if we should sample this request
		if !sampler.Sample() {
			return next.Handle(req, st)
		}

		start := time.Now()
		resp := next.Handle(req, st)
		if resp == nil {
			collector.ObserveRequest(req.Method, common.StatusInternalServerError, time.Since(start), 0)
			return resp
		}
		collector.ObserveRequest(req.Method, resp.Status, time.Since(start), len(resp.Body))
		return resp
	})
}
