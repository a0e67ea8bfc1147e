// Package middleware provides a collection of middleware components for the SServer framework.
package middleware

import (
	"runtime/debug"
	"time"

	"github.com/Suhaibinator/SServer/pkg/common"
	"github.com/Suhaibinator/SServer/pkg/state"
	"go.uber.org/zap"
)

// Use the Middleware type from the common package
type Middleware = common.Middleware

// Chain combines multiple middlewares into one. The first middleware is the outermost.
func Chain(middlewares ...Middleware) Middleware {
	chain := common.NewMiddlewareChain(middlewares...)
	return common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) *common.Response {
		return chain.Then(next).Handle(req, st)
	})
}

// Recovery is a middleware that recovers from panics in the rest of the chain
func Recovery(logger *zap.Logger) Middleware {
	return common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) (resp *common.Response) {
		defer func() {
			if rec := recover(); rec != nil {
				// Log the panic
				logger.Error("Panic recovered",
					zap.Any("panic", rec),
					zap.String("stack", string(debug.Stack())),
					zap.String("method", req.Method.String()),
					zap.String("path", req.Path()),
				)

				// Return a 500 Internal Server Error
				resp = common.InternalServerError()
			}
		}()

		return next.Handle(req, st)
	})
}

// Logging is a middleware that logs every request and the response it produced
func Logging(logger *zap.Logger) Middleware {
	return common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) *common.Response {
		start := time.Now()

		logger.Debug("Received request",
			zap.String("method", req.Method.String()),
			zap.String("path", req.Path()),
			zap.String("version", req.Version.String()),
			zap.Int("body_size", len(req.Body)),
			zap.String("remote_addr", req.RemoteAddr),
		)

		// Call the next handler
		resp := next.Handle(req, st)
		if resp == nil {
			resp = common.InternalServerError()
		}

		// Calculate duration
		duration := time.Since(start)
		status := resp.Status.Code()

		// Use appropriate log level based on status code and duration
		switch {
		case status >= 500:
			// Server errors at Error level
			logger.Error("Server error",
				zap.String("method", req.Method.String()),
				zap.String("path", req.Path()),
				zap.Int("status", status),
				zap.Duration("duration", duration),
				zap.String("remote_addr", req.RemoteAddr),
			)
		case status >= 400:
			// Client errors at Warn level
			logger.Warn("Client error",
				zap.String("method", req.Method.String()),
				zap.String("path", req.Path()),
				zap.Int("status", status),
				zap.Duration("duration", duration),
			)
		case duration > 1*time.Second:
			// Slow requests at Warn level
			logger.Warn("Slow request",
				zap.String("method", req.Method.String()),
				zap.String("path", req.Path()),
				zap.Int("status", status),
				zap.Duration("duration", duration),
			)
		default:
			// Normal requests at Debug level to avoid log spam
			logger.Debug("Response",
				zap.String("method", req.Method.String()),
				zap.String("path", req.Path()),
				zap.Int("status", status),
				zap.Int("body_size", len(resp.Body)),
				zap.Duration("duration", duration),
			)
		}
		return resp
	})
}
