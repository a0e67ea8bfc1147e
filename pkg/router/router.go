package router

import (
	"errors"
	"fmt"

	"github.com/Suhaibinator/SServer/pkg/common"
	"github.com/Suhaibinator/SServer/pkg/middleware"
	"github.com/Suhaibinator/SServer/pkg/state"
	"go.uber.org/zap"
)

// Router matches requests to handlers. It is built during setup and then shared, unchanged,
// by every connection; none of its methods other than HandleRequest may be called once the
// server is running.
type Router struct {
	config         RouterConfig
	logger         *zap.Logger
	middlewares    common.MiddlewareChain
	routes         map[common.Method][]*route
	order          []*route
	state          *state.State
	staticDir      string
	defaultHandler common.Handler
}

// NewRouter creates a new Router with the given configuration.
// It sets up logging, registers routes from sub-routers and validates the static directory.
func NewRouter(config RouterConfig) (*Router, error) {
	// Set up the logger
	logger := config.Logger
	if logger == nil {
		// Create a default logger if none is provided
		var err error
		logger, err = zap.NewProduction()
		if err != nil {
			// Fallback to a no-op logger if we can't create a production logger
			logger = zap.NewNop()
		}
	}

	r := &Router{
		config:         config,
		logger:         logger,
		middlewares:    common.NewMiddlewareChain(config.Middlewares...),
		routes:         make(map[common.Method][]*route),
		state:          state.New(),
		defaultHandler: config.DefaultHandler,
	}

	if config.StaticDir != "" {
		if err := r.SetStaticDir(config.StaticDir); err != nil {
			return nil, err
		}
	}

	// Register routes from sub-routers
	for _, sr := range config.SubRouters {
		if err := r.registerSubRouter(sr); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// registerSubRouter registers all routes in a sub-router.
// It applies the sub-router's path prefix and middlewares to all of its routes.
func (r *Router) registerSubRouter(sr SubRouterConfig) error {
	for _, rc := range sr.Routes {
		local := common.NewMiddlewareChain(sr.Middlewares...).Append(rc.Middlewares...)
		for _, method := range rc.Methods {
			if err := r.addRoute(method, sr.PathPrefix+rc.Path, rc.Handler, local); err != nil {
				return err
			}
		}
	}
	return nil
}

// RegisterRoute registers a route for each of its methods.
// For generic routes with type parameters, use the RegisterGenericRoute function instead.
func (r *Router) RegisterRoute(rc RouteConfigBase) error {
	local := common.NewMiddlewareChain(rc.Middlewares...)
	for _, method := range rc.Methods {
		if err := r.addRoute(method, rc.Path, rc.Handler, local); err != nil {
			return err
		}
	}
	return nil
}

// Handle registers h for method and template.
func (r *Router) Handle(method common.Method, template string, h common.Handler) error {
	return r.addRoute(method, template, h, nil)
}

// HandleFunc registers a handler that does not use the shared state.
func (r *Router) HandleFunc(method common.Method, template string, f func(req *common.Request) *common.Response) error {
	return r.addRoute(method, template, common.Stateless(f), nil)
}

// HandleStateful registers a handler that uses the shared state.
func (r *Router) HandleStateful(method common.Method, template string, f func(req *common.Request, st *state.State) *common.Response) error {
	return r.addRoute(method, template, common.Stateful(f), nil)
}

// RegisterGenericRoute registers a route with generic request and response types.
// This is a standalone function rather than a method because Go methods cannot have type parameters.
// The request body is decoded with the route's codec, the typed handler is called and its
// result is encoded into the response.
func RegisterGenericRoute[Req any, Resp any](r *Router, rc RouteConfig[Req, Resp]) error {
	if rc.Codec == nil {
		return fmt.Errorf("register route %q: codec is required", rc.Path)
	}
	if rc.Handler == nil {
		return fmt.Errorf("register route %q: handler is required", rc.Path)
	}

	handler := common.Stateless(func(req *common.Request) *common.Response {
		// Decode the request
		data, err := rc.Codec.Decode(req)
		if err != nil {
			return r.handleError(req, err, common.StatusBadRequest, "Failed to decode request")
		}

		// Call the handler
		out, err := rc.Handler(req, data)
		if err != nil {
			return r.handleError(req, err, common.StatusInternalServerError, "Handler error")
		}

		// Encode the response
		resp := common.OK()
		if err := rc.Codec.Encode(resp, out); err != nil {
			return r.handleError(req, err, common.StatusInternalServerError, "Failed to encode response")
		}
		return resp
	})

	return r.RegisterRoute(RouteConfigBase{
		Path:        rc.Path,
		Methods:     rc.Methods,
		Handler:     handler,
		Middlewares: rc.Middlewares,
	})
}

// addRoute compiles the template and appends the route to the table for method.
func (r *Router) addRoute(method common.Method, template string, h common.Handler, local common.MiddlewareChain) error {
	if _, ok := common.ParseMethod(method.String()); !ok {
		return fmt.Errorf("register route %q: unknown method %q", template, method)
	}
	if h == nil {
		return fmt.Errorf("register route %s %q: nil handler", method, template)
	}
	pattern, err := compileTemplate(template)
	if err != nil {
		return fmt.Errorf("register route %s %q: %w", method, template, err)
	}

	rt := &route{
		method:   method,
		template: template,
		pattern:  pattern,
		handler:  h,
		local:    local,
	}
	r.compose(rt)
	r.routes[method] = append(r.routes[method], rt)
	r.order = append(r.order, rt)

	r.logger.Debug("Route registered",
		zap.String("method", method.String()),
		zap.String("path", template),
	)
	return nil
}

// compose builds the route's handler with global middlewares outermost, then the
// sub-router and route middlewares.
func (r *Router) compose(rt *route) {
	rt.wrapped = r.middlewares.Append(rt.local...).Then(rt.handler)
}

// Use appends global middlewares. Middlewares run in the order they were added,
// and every route registered so far is rebuilt to include them.
func (r *Router) Use(middlewares ...common.Middleware) {
	r.middlewares = r.middlewares.Append(middlewares...)
	for _, rt := range r.order {
		r.compose(rt)
	}
}

// SetState replaces the router's shared state value.
// This is a standalone function because Go methods cannot have type parameters.
func SetState[T any](r *Router, v T) {
	state.Set(r.state, v)
}

// State returns the router's shared state container.
func (r *Router) State() *state.State {
	return r.state
}

// SetDefaultHandler sets the handler used when no route or static file matches.
// The default handler is called without the middleware chain.
func (r *Router) SetDefaultHandler(h common.Handler) {
	r.defaultHandler = h
}

// Routes lists the registered routes in registration order.
func (r *Router) Routes() []RouteInfo {
	infos := make([]RouteInfo, 0, len(r.order))
	for _, rt := range r.order {
		infos = append(infos, RouteInfo{Method: rt.method, Path: rt.template})
	}
	return infos
}

// HandleRequest produces the router's response for req.
// It tries the route table, then the static directory, then the default handler.
// The boolean is false when none of them applies; the caller picks the fallback.
// A panic in any handler is recovered and turned into a 500 response.
func (r *Router) HandleRequest(req *common.Request) (resp *common.Response, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			fields := r.requestFields(req, zap.Any("panic", rec))
			r.logger.Error("Panic recovered", fields...)
			resp, ok = common.InternalServerError(), true
		}
	}()

	if rt, params, found := r.lookup(req.Method, req.Path()); found {
		req.URI.SetParams(params)
		return r.nonNil(req, rt.wrapped.Handle(req, r.state)), true
	}

	if r.staticDir != "" {
		if resp, found := r.serveStatic(req); found {
			return resp, true
		}
	}

	if r.defaultHandler != nil {
		return r.nonNil(req, r.defaultHandler.Handle(req, r.state)), true
	}

	r.logger.Debug("No route matched",
		zap.String("method", req.Method.String()),
		zap.String("path", req.Path()),
	)
	return nil, false
}

// nonNil turns a nil handler result into a 500 response.
func (r *Router) nonNil(req *common.Request, resp *common.Response) *common.Response {
	if resp == nil {
		r.logger.Error("Handler returned nil response", r.requestFields(req)...)
		return common.InternalServerError()
	}
	return resp
}

// requestFields returns the standard log fields for req, with the trace ID first when enabled.
func (r *Router) requestFields(req *common.Request, extra ...zap.Field) []zap.Field {
	fields := append(extra,
		zap.String("method", req.Method.String()),
		zap.String("path", req.Path()),
	)

	// Add trace ID if enabled and present
	if traceID := middleware.GetTraceID(req); r.config.EnableTraceID && traceID != "" {
		fields = append([]zap.Field{zap.String("trace_id", traceID)}, fields...)
	}
	return fields
}

// handleError logs err and returns an error response.
// If err is an *HTTPError, its status code and message are used instead of the defaults.
func (r *Router) handleError(req *common.Request, err error, status common.StatusCode, message string) *common.Response {
	r.logger.Error(message, r.requestFields(req, zap.Error(err))...)

	// Check if the error is a specific HTTP error
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.StatusCode
		message = httpErr.Message
	}

	return common.Text(status, message)
}

// HTTPError represents an HTTP error with a status code and message.
// When returned from a generic handler, the router uses the status code and message
// to build the response.
type HTTPError struct {
	StatusCode common.StatusCode // HTTP status code (e.g., 400, 404, 500)
	Message    string            // Error message sent in the response body
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// NewHTTPError creates a new HTTPError with the specified status code and message.
func NewHTTPError(statusCode common.StatusCode, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}
