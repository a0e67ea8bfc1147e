package middleware

import (
	"context"

	"github.com/Suhaibinator/SServer/pkg/common"
	"github.com/Suhaibinator/SServer/pkg/state"
	"github.com/google/uuid"
)

type traceIDKey struct{}

// TraceIDKey is the request context key holding the trace ID
var TraceIDKey = traceIDKey{}

// TraceIDHeader is the default header carrying the trace ID
const TraceIDHeader = "X-Trace-ID"

// TraceConfig configures TraceMiddlewareWithConfig
type TraceConfig struct {
	// Header is read from the request and written on the response. Defaults to TraceIDHeader.
	Header string

	// TrustIncoming reuses a caller-supplied ID when it parses as a UUID
	TrustIncoming bool

	// Generator creates new IDs. Defaults to random UUIDs.
	Generator func() string
}

// TraceMiddleware gives every request a fresh UUID trace ID. The router includes it in
// its log fields when EnableTraceID is set.
func TraceMiddleware() Middleware {
	return TraceMiddlewareWithConfig(TraceConfig{})
}

// TraceMiddlewareWithConfig is TraceMiddleware with a custom header and ID source
func TraceMiddlewareWithConfig(config TraceConfig) Middleware {
	if config.Header == "" {
		config.Header = TraceIDHeader
	}
	if config.Generator == nil {
		config.Generator = uuid.NewString
	}

	return common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) *common.Response {
		traceID := ""
		if config.TrustIncoming {
			if incoming, ok := req.GetHeader(config.Header); ok {
				if _, err := uuid.Parse(incoming); err == nil {
					traceID = incoming
				}
			}
		}
		if traceID == "" {
			traceID = config.Generator()
		}

		resp := next.Handle(req.WithContext(context.WithValue(req.Context(), TraceIDKey, traceID)), st)
		if resp != nil {
			resp.SetHeader(config.Header, traceID)
		}
		return resp
	})
}

// GetTraceID returns the request's trace ID, or "" when TraceMiddleware did not run
func GetTraceID(req *common.Request) string {
	return GetTraceIDFromContext(req.Context())
}

// GetTraceIDFromContext is GetTraceID for a bare context
func GetTraceIDFromContext(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}
