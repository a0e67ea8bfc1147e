package common

import "github.com/Suhaibinator/SServer/pkg/state"

// MiddlewareChain represents a chain of middleware
type MiddlewareChain []Middleware

// NewMiddlewareChain creates a new middleware chain
func NewMiddlewareChain(middlewares ...Middleware) MiddlewareChain {
	return middlewares
}

// Append adds middleware to the end of the chain
func (c MiddlewareChain) Append(middlewares ...Middleware) MiddlewareChain {
	result := make(MiddlewareChain, 0, len(c)+len(middlewares))
	result = append(result, c...)
	return append(result, middlewares...)
}

// Prepend adds middleware to the beginning of the chain
func (c MiddlewareChain) Prepend(middlewares ...Middleware) MiddlewareChain {
	result := make(MiddlewareChain, len(middlewares)+len(c))
	copy(result, middlewares)
	copy(result[len(middlewares):], c)
	return result
}

// Then applies the middleware chain to a handler. The first middleware in the chain
// is the outermost one: requests pass through the chain in order, responses in reverse.
func (c MiddlewareChain) Then(h Handler) Handler {
	for i := len(c) - 1; i >= 0; i-- {
		h = &link{middleware: c[i], next: h}
	}
	return h
}

// ThenFunc applies the middleware chain to a state-aware function.
func (c MiddlewareChain) ThenFunc(f func(req *Request, st *state.State) *Response) Handler {
	return c.Then(HandlerFunc(f))
}

// link binds one middleware to the rest of the chain.
type link struct {
	middleware Middleware
	next       Handler
}

// Handle gives the middleware its own copy of the request.
func (l *link) Handle(req *Request, st *state.State) *Response {
	return l.middleware.Handle(req.Clone(), st, l.next)
}
