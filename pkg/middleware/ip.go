package middleware

import (
	"context"
	"net"
	"strings"

	"github.com/Suhaibinator/SServer/pkg/common"
	"github.com/Suhaibinator/SServer/pkg/state"
)

// IPSourceType names where the client address is read from
type IPSourceType string

const (
	// IPSourceRemoteAddr uses the peer address of the connection
	IPSourceRemoteAddr IPSourceType = "remote_addr"

	// IPSourceXForwardedFor uses the first valid entry of X-Forwarded-For
	IPSourceXForwardedFor IPSourceType = "x_forwarded_for"

	// IPSourceXRealIP uses the X-Real-IP header
	IPSourceXRealIP IPSourceType = "x_real_ip"

	// IPSourceCustomHeader uses IPConfig.CustomHeader
	IPSourceCustomHeader IPSourceType = "custom_header"
)

// IPConfig configures ClientIPMiddleware
type IPConfig struct {
	Source       IPSourceType
	CustomHeader string

	// TrustProxy allows header sources. Without it every source resolves to the peer address.
	TrustProxy bool

	// ResponseHeader, when set, echoes the resolved address on the response
	ResponseHeader string

	// Validate rejects the request with 403 when it returns an error (optional)
	Validate func(ip string) error
}

// DefaultIPConfig trusts X-Forwarded-For
func DefaultIPConfig() *IPConfig {
	return &IPConfig{
		Source:     IPSourceXForwardedFor,
		TrustProxy: true,
	}
}

type clientIPKey struct{}

// ClientIPKey is the request context key holding the resolved client address
var ClientIPKey = clientIPKey{}

// ClientIP returns the address stored by ClientIPMiddleware, or "" when it did not run
func ClientIP(req *common.Request) string {
	ip, _ := req.Context().Value(ClientIPKey).(string)
	return ip
}

// ClientIPMiddleware resolves the client address once and stores it in the request context
func ClientIPMiddleware(config *IPConfig) Middleware {
	if config == nil {
		config = DefaultIPConfig()
	}

	return common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) *common.Response {
		ip := resolveClientIP(req, config)

		if config.Validate != nil {
			if err := config.Validate(ip); err != nil {
				return common.Text(common.StatusForbidden, "Forbidden")
			}
		}

		resp := next.Handle(req.WithContext(context.WithValue(req.Context(), ClientIPKey, ip)), st)
		if resp != nil && config.ResponseHeader != "" {
			resp.SetHeader(config.ResponseHeader, ip)
		}
		return resp
	})
}

func resolveClientIP(req *common.Request, config *IPConfig) string {
	if config.TrustProxy {
		var ip string
		switch config.Source {
		case IPSourceRemoteAddr:
		case IPSourceXRealIP:
			ip = headerIP(req, "X-Real-IP")
		case IPSourceCustomHeader:
			ip = headerIP(req, config.CustomHeader)
		default:
			ip = forwardedIP(req)
		}
		if ip != "" {
			return ip
		}
	}
	return hostOnly(req.RemoteAddr)
}

// forwardedIP returns the leftmost parseable address in X-Forwarded-For
func forwardedIP(req *common.Request) string {
	xff, _ := req.GetHeader("X-Forwarded-For")
	for _, part := range strings.Split(xff, ",") {
		if ip := validIP(part); ip != "" {
			return ip
		}
	}
	return ""
}

func headerIP(req *common.Request, name string) string {
	if name == "" {
		return ""
	}
	v, _ := req.GetHeader(name)
	return validIP(v)
}

// validIP returns the canonical form of s, or "" when s is not an address
func validIP(s string) string {
	ip := net.ParseIP(hostOnly(strings.TrimSpace(s)))
	if ip == nil {
		return ""
	}
	return ip.String()
}

// hostOnly strips a port and IPv6 brackets
func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
}
