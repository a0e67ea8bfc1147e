package common

import "github.com/Suhaibinator/SServer/pkg/state"

// Middleware wraps the rest of the handling chain. It either calls next exactly once and
// may transform the response, or returns its own response without calling next.
type Middleware interface {
	Handle(req *Request, st *state.State, next Handler) *Response
}

// MiddlewareFunc adapts a function to the Middleware interface.
type MiddlewareFunc func(req *Request, st *state.State, next Handler) *Response

// Handle calls f(req, st, next).
func (f MiddlewareFunc) Handle(req *Request, st *state.State, next Handler) *Response {
	return f(req, st, next)
}
