package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/Suhaibinator/SServer/pkg/common"
	"github.com/Suhaibinator/SServer/pkg/state"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Unique identifier for this rate limit bucket
	// If multiple routes share the same BucketName, they share the same rate limit
	BucketName string

	// Maximum number of requests allowed in the time window
	Limit int

	// Time window for the rate limit (e.g., 1 minute, 1 hour)
	Window time.Duration

	// Strategy for identifying clients
	// - "ip": Use the address resolved by ClientIPMiddleware, or the peer address when it
	//   did not run. Run ClientIPMiddleware with TrustProxy behind a reverse proxy.
	// - "custom": Use the KeyExtractor
	Strategy string

	// Custom key extractor function (used when Strategy is "custom")
	KeyExtractor func(*common.Request) (string, error)

	// Smooth spaces admitted requests evenly across the window instead of letting
	// a burst of Limit requests through at once. Admitted requests may wait.
	Smooth bool

	// Response to produce when rate limit is exceeded
	// If nil, a default 429 Too Many Requests response is sent
	ExceededHandler common.Handler
}

// RateLimiter defines the interface for rate limiting algorithms
type RateLimiter interface {
	// Allow checks if a request is allowed based on the key and rate limit config
	// Returns true if the request is allowed, false otherwise
	// Also returns the number of remaining requests and time until reset
	Allow(key string, limit int, window time.Duration) (bool, int, time.Duration)
}

// Pacer is implemented by limiters that can space out admitted requests
type Pacer interface {
	// Pace blocks until the next request for key may proceed
	Pace(key string, limit int, window time.Duration)
}

// UberRateLimiter implements RateLimiter with fixed-window counters and
// paces admitted requests with Uber's leaky-bucket ratelimit library
type UberRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	windowStart time.Time
	count       int
	pacer       ratelimit.Limiter
}

// NewUberRateLimiter creates a new rate limiter using Uber's ratelimit library
func NewUberRateLimiter() *UberRateLimiter {
	return &UberRateLimiter{
		buckets: make(map[string]*bucket),
	}
}

// normalize treats a zero limit as 1 and a zero window as 1 second
func normalize(limit int, window time.Duration) (int, time.Duration) {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return limit, window
}

// getBucket gets or creates the bucket for key. The caller holds u.mu.
func (u *UberRateLimiter) getBucket(key string, limit int, window time.Duration, now time.Time) *bucket {
	b, ok := u.buckets[key]
	if !ok {
		b = &bucket{
			windowStart: now,
			pacer:       ratelimit.New(limit, ratelimit.Per(window)),
		}
		u.buckets[key] = b
	}
	return b
}

// Allow checks if a request is allowed based on the key and rate limit config
func (u *UberRateLimiter) Allow(key string, limit int, window time.Duration) (bool, int, time.Duration) {
	limit, window = normalize(limit, window)
	now := time.Now()

	u.mu.Lock()
	defer u.mu.Unlock()

	b := u.getBucket(key, limit, window, now)

	// Start a new window once the previous one has expired
	if now.Sub(b.windowStart) >= window {
		b.windowStart = now
		b.count = 0
	}
	reset := window - now.Sub(b.windowStart)

	if b.count >= limit {
		return false, 0, reset
	}
	b.count++
	return true, limit - b.count, reset
}

// Pace blocks on the bucket's leaky-bucket limiter
func (u *UberRateLimiter) Pace(key string, limit int, window time.Duration) {
	limit, window = normalize(limit, window)

	u.mu.Lock()
	b := u.getBucket(key, limit, window, time.Now())
	u.mu.Unlock()

	b.pacer.Take()
}

// extractIP returns the address set by ClientIPMiddleware, or the peer address.
// Forwarding headers are only honored through ClientIPMiddleware and its TrustProxy.
func extractIP(req *common.Request) string {
	if ip := ClientIP(req); ip != "" {
		return ip
	}
	return hostOnly(req.RemoteAddr)
}

// RateLimit creates a middleware that enforces rate limits
func RateLimit(config *RateLimitConfig, limiter RateLimiter, logger *zap.Logger) Middleware {
	return common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) *common.Response {
		// Skip rate limiting if config is nil
		if config == nil {
			return next.Handle(req, st)
		}

		// Extract key based on strategy
		var key string
		switch config.Strategy {
		case "custom":
			if config.KeyExtractor == nil {
				key = extractIP(req)
				break
			}
			var err error
			key, err = config.KeyExtractor(req)
			if err != nil {
				logger.Error("Failed to extract rate limit key",
					zap.Error(err),
					zap.String("method", req.Method.String()),
					zap.String("path", req.Path()),
				)
				return common.InternalServerError()
			}
		default:
			key = extractIP(req)
		}

		// Combine bucket name and key to create a unique identifier
		bucketKey := config.BucketName + ":" + key

		// Check rate limit
		allowed, remaining, reset := limiter.Allow(bucketKey, config.Limit, config.Window)

		setHeaders := func(resp *common.Response) {
			resp.SetHeader("X-RateLimit-Limit", strconv.Itoa(config.Limit))
			resp.SetHeader("X-RateLimit-Remaining", strconv.Itoa(remaining))
			resp.SetHeader("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(reset).Unix(), 10))
		}

		// If rate limit exceeded
		if !allowed {
			logger.Warn("Rate limit exceeded",
				zap.String("method", req.Method.String()),
				zap.String("path", req.Path()),
				zap.String("key", key),
				zap.Int("limit", config.Limit),
			)

			// Use custom handler if provided, otherwise return 429
			var resp *common.Response
			if config.ExceededHandler != nil {
				resp = config.ExceededHandler.Handle(req, st)
			}
			if resp == nil {
				resp = common.Text(common.StatusTooManyRequests, "Too Many Requests")
			}
			setHeaders(resp)
			resp.SetHeader("Retry-After", strconv.FormatInt(int64(reset.Seconds()), 10))
			return resp
		}

		if config.Smooth {
			if p, ok := limiter.(Pacer); ok {
				p.Pace(bucketKey, config.Limit, config.Window)
			}
		}

		resp := next.Handle(req, st)
		if resp != nil {
			setHeaders(resp)
		}
		return resp
	})
}
