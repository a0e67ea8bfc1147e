// Package common provides the request, response, handler and middleware types shared by
// every part of the SServer framework.
package common

// Method is an HTTP request method. Only the methods listed below are recognized;
// anything else fails request parsing.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodOptions Method = "OPTIONS"
	MethodDelete  Method = "DELETE"
	MethodTrace   Method = "TRACE"
)

// Methods lists every recognized method in a stable order.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodOptions, MethodDelete, MethodTrace}

// ParseMethod returns the Method for s. Matching is case-sensitive, as on the wire.
func ParseMethod(s string) (Method, bool) {
	switch m := Method(s); m {
	case MethodGet, MethodPost, MethodPut, MethodOptions, MethodDelete, MethodTrace:
		return m, true
	}
	return "", false
}

// String returns the method token.
func (m Method) String() string {
	return string(m)
}

// Version is the protocol version token of a request or response.
type Version string

// HTTP11 is the only version SServer writes.
const HTTP11 Version = "HTTP/1.1"

// String returns the version token.
func (v Version) String() string {
	return string(v)
}
