package middleware

import (
	"strings"

	"github.com/Suhaibinator/SServer/pkg/common"
	"github.com/Suhaibinator/SServer/pkg/state"
)

// CORSConfig defines which cross-origin requests are allowed
type CORSConfig struct {
	// AllowedOrigins lists origins that receive CORS headers. "*" allows every origin.
	AllowedOrigins []string

	// AllowedMethods is written to Access-Control-Allow-Methods
	AllowedMethods []common.Method

	// AllowedHeaders is written to Access-Control-Allow-Headers
	AllowedHeaders []string

	// AllowCredentials adds Access-Control-Allow-Credentials: true
	AllowCredentials bool
}

// CORS is a middleware that adds CORS headers to responses for requests carrying an Origin
// header. An allowed origin is echoed back. OPTIONS requests with an Origin are answered
// directly with 204 No Content; requests without an Origin pass through untouched.
func CORS(config CORSConfig) Middleware {
	methods := make([]string, len(config.AllowedMethods))
	for i, m := range config.AllowedMethods {
		methods[i] = m.String()
	}
	allowMethods := strings.Join(methods, ", ")
	allowHeaders := strings.Join(config.AllowedHeaders, ", ")

	addHeaders := func(resp *common.Response, origin string) {
		if !config.allows(origin) {
			return
		}
		resp.SetHeader("Access-Control-Allow-Origin", origin)
		resp.SetHeader("Access-Control-Allow-Methods", allowMethods)
		resp.SetHeader("Access-Control-Allow-Headers", allowHeaders)
		if config.AllowCredentials {
			resp.SetHeader("Access-Control-Allow-Credentials", "true")
		}
	}

	return common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) *common.Response {
		origin, ok := req.GetHeader("Origin")
		if !ok {
			return next.Handle(req, st)
		}

		// Handle preflight requests
		if req.Method == common.MethodOptions {
			resp := common.NoContent()
			addHeaders(resp, origin)
			return resp
		}

		resp := next.Handle(req, st)
		if resp != nil {
			addHeaders(resp, origin)
		}
		return resp
	})
}

func (c CORSConfig) allows(origin string) bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
