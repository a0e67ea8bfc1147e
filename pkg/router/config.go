// Package router provides request routing for SServer.
// It matches requests against path templates, runs middlewares around the matched handler,
// and falls back to a static directory and a default handler.
package router

import (
	"github.com/Suhaibinator/SServer/pkg/common"
	"go.uber.org/zap"
)

// RouterConfig defines the global configuration for the router.
// It includes settings for logging, middleware, sub-routers and fallbacks.
type RouterConfig struct {
	Logger         *zap.Logger         // Logger for all router operations
	Middlewares    []common.Middleware // Global middlewares applied to all routes
	SubRouters     []SubRouterConfig   // Sub-routers with their own path prefix and middlewares
	StaticDir      string              // Directory served when no route matches (optional)
	DefaultHandler common.Handler      // Handler used when nothing else matches (optional)
	EnableTraceID  bool                // Add trace IDs to error logs
}

// SubRouterConfig defines configuration for a group of routes with a common path prefix.
// This allows for organizing routes into logical groups and applying shared middleware.
type SubRouterConfig struct {
	PathPrefix  string              // Common path prefix for all routes in this sub-router
	Routes      []RouteConfigBase   // Routes in this sub-router
	Middlewares []common.Middleware // Middlewares applied to all routes in this sub-router
}

// RouteConfigBase defines the base configuration for a route without generics.
type RouteConfigBase struct {
	Path        string              // Route template, e.g. "/users/{id}"
	Methods     []common.Method     // Methods this route handles
	Handler     common.Handler      // Handler, built with common.Stateless or common.Stateful
	Middlewares []common.Middleware // Middlewares applied to this specific route
}

// RouteConfig defines a route with generic request and response types.
// The codec decodes the request body into T and encodes the handler's U into the response.
type RouteConfig[T any, U any] struct {
	Path        string               // Route template, e.g. "/users/{id}"
	Methods     []common.Method      // Methods this route handles
	Codec       Codec[T, U]          // Codec for unmarshaling the request and marshaling the response
	Handler     GenericHandler[T, U] // Typed handler function
	Middlewares []common.Middleware  // Middlewares applied to this specific route
}

// GenericHandler defines a handler function with generic request and response types.
// When used with RegisterGenericRoute, the router decodes the request and encodes the
// response using the route's Codec.
type GenericHandler[T any, U any] func(req *common.Request, data T) (U, error)

// Codec defines an interface for unmarshaling request bodies and marshaling response bodies.
// The codec package provides JSON and Protocol Buffers implementations.
type Codec[T any, U any] interface {
	// Decode deserializes the request body into a value of type T.
	Decode(req *common.Request) (T, error)

	// Encode serializes a value of type U into the response body and sets its content type.
	Encode(resp *common.Response, v U) error
}

// RouteInfo describes a registered route.
type RouteInfo struct {
	Method common.Method `json:"method"`
	Path   string        `json:"path"`
}
