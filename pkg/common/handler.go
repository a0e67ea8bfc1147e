package common

import "github.com/Suhaibinator/SServer/pkg/state"

// Handler produces a response for a request. Every handler receives the router's shared
// state; handlers that do not need it are wrapped with Stateless.
type Handler interface {
	Handle(req *Request, st *state.State) *Response
}

// HandlerFunc adapts a state-aware function to the Handler interface.
type HandlerFunc func(req *Request, st *state.State) *Response

// Handle calls f(req, st).
func (f HandlerFunc) Handle(req *Request, st *state.State) *Response {
	return f(req, st)
}

// Stateless wraps a function that does not use the shared state.
func Stateless(f func(req *Request) *Response) Handler {
	return HandlerFunc(func(req *Request, _ *state.State) *Response {
		return f(req)
	})
}

// Stateful wraps a function that uses the shared state.
func Stateful(f func(req *Request, st *state.State) *Response) Handler {
	return HandlerFunc(f)
}
