package common

import (
	"context"
	"strings"
)

// Request is a parsed HTTP request. Each middleware layer works on its own copy,
// so changes made by one layer are only seen by the layers it calls.
type Request struct {
	Method  Method
	URI     *URI
	Version Version
	// Header holds one value per key; a repeated key keeps the last value.
	Header map[string]string
	Body   []byte
	// RemoteAddr is the peer address of the connection the request arrived on.
	RemoteAddr string

	ctx context.Context
}

// NewRequest creates a request for method and target with an empty header map.
func NewRequest(method Method, target string) *Request {
	return &Request{
		Method:  method,
		URI:     ParseURI(target),
		Version: HTTP11,
		Header:  make(map[string]string),
	}
}

// Path returns the request path without the query string.
func (r *Request) Path() string {
	if r.URI == nil {
		return ""
	}
	return r.URI.Path()
}

// Query returns a query parameter.
func (r *Request) Query(name string) (string, bool) {
	if r.URI == nil {
		return "", false
	}
	return r.URI.Query(name)
}

// Param returns a path parameter captured by the matched route.
func (r *Request) Param(name string) (string, bool) {
	if r.URI == nil {
		return "", false
	}
	return r.URI.Param(name)
}

// GetHeader returns the header value for key. An exact match wins; otherwise, among keys
// that match case-insensitively, the one that sorts first is used.
func (r *Request) GetHeader(key string) (string, bool) {
	if v, ok := r.Header[key]; ok {
		return v, true
	}
	found := ""
	matched := false
	for k := range r.Header {
		if strings.EqualFold(k, key) && (!matched || k < found) {
			found, matched = k, true
		}
	}
	if !matched {
		return "", false
	}
	return r.Header[found], true
}

// SetHeader sets a header, replacing any previous value for the same key.
func (r *Request) SetHeader(key, value string) {
	if r.Header == nil {
		r.Header = make(map[string]string)
	}
	r.Header[key] = value
}

// Context returns the request context, never nil.
func (r *Request) Context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of r with its context changed to ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx == nil {
		panic("common: nil context")
	}
	r2 := new(Request)
	*r2 = *r
	r2.ctx = ctx
	return r2
}

// Clone returns a deep copy of r. The context is shared.
func (r *Request) Clone() *Request {
	r2 := &Request{
		Method:     r.Method,
		URI:        r.URI.clone(),
		Version:    r.Version,
		Header:     cloneMap(r.Header),
		RemoteAddr: r.RemoteAddr,
		ctx:        r.ctx,
	}
	if r.Body != nil {
		r2.Body = append([]byte(nil), r.Body...)
	}
	return r2
}
