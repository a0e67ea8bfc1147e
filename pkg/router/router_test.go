package router

import (
	"sync/atomic"
	"testing"

	"github.com/Suhaibinator/SServer/pkg/common"
	"github.com/Suhaibinator/SServer/pkg/middleware"
	"github.com/Suhaibinator/SServer/pkg/state"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(t *testing.T, config RouterConfig) *Router {
	t.Helper()
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	r, err := NewRouter(config)
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}
	return r
}

func textHandler(body string) func(req *common.Request) *common.Response {
	return func(req *common.Request) *common.Response {
		return common.Text(common.StatusOK, body)
	}
}

// mustHandle fails the test if registration fails
func mustHandle(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Failed to register route: %v", err)
	}
}

// TestRouteMatching tests method and path matching with parameters
func TestRouteMatching(t *testing.T) {
	r := newTestRouter(t, RouterConfig{})
	mustHandle(t, r.HandleFunc(common.MethodGet, "/", textHandler("root")))
	mustHandle(t, r.HandleFunc(common.MethodGet, "/users/{id}", func(req *common.Request) *common.Response {
		id, _ := req.Param("id")
		return common.Text(common.StatusOK, "user "+id)
	}))
	mustHandle(t, r.HandleFunc(common.MethodPost, "/users/{id}/posts/{post_id}", func(req *common.Request) *common.Response {
		id, _ := req.Param("id")
		post, _ := req.Param("post_id")
		return common.Text(common.StatusOK, id+"/"+post)
	}))

	tests := []struct {
		method common.Method
		target string
		found  bool
		body   string
	}{
		{common.MethodGet, "/", true, "root"},
		{common.MethodGet, "/users/42", true, "user 42"},
		{common.MethodGet, "/users/42?expand=true", true, "user 42"},
		{common.MethodPost, "/users/7/posts/99", true, "7/99"},
		{common.MethodPost, "/users/42", false, ""},
		{common.MethodGet, "/users/42/extra", false, ""},
		{common.MethodGet, "/users/", false, ""},
		{common.MethodGet, "/users", false, ""},
		{common.MethodDelete, "/", false, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.method)+" "+tt.target, func(t *testing.T) {
			resp, found := r.HandleRequest(common.NewRequest(tt.method, tt.target))
			if found != tt.found {
				t.Fatalf("Expected found=%v, got %v", tt.found, found)
			}
			if !found {
				if resp != nil {
					t.Errorf("Expected nil response, got %v", resp)
				}
				return
			}
			if string(resp.Body) != tt.body {
				t.Errorf("Expected body %q, got %q", tt.body, string(resp.Body))
			}
		})
	}
}

// TestParamsVisibleToHandler tests that captured params are set on the request
func TestParamsVisibleToHandler(t *testing.T) {
	r := newTestRouter(t, RouterConfig{})
	var params map[string]string
	mustHandle(t, r.HandleFunc(common.MethodGet, "/a/{x}/b/{y}", func(req *common.Request) *common.Response {
		params = req.URI.Params()
		return common.OK()
	}))

	r.HandleRequest(common.NewRequest(common.MethodGet, "/a/1/b/two"))

	if len(params) != 2 || params["x"] != "1" || params["y"] != "two" {
		t.Errorf("Expected params x=1 y=two, got %v", params)
	}
}

// TestFirstMatchWins tests that routes are tried in registration order
func TestFirstMatchWins(t *testing.T) {
	r := newTestRouter(t, RouterConfig{})
	mustHandle(t, r.HandleFunc(common.MethodGet, "/items/{id}", textHandler("param")))
	mustHandle(t, r.HandleFunc(common.MethodGet, "/items/special", textHandler("literal")))

	resp, _ := r.HandleRequest(common.NewRequest(common.MethodGet, "/items/special"))
	if string(resp.Body) != "param" {
		t.Errorf("Expected the first registered route to win, got %q", string(resp.Body))
	}
}

// TestTemplateRegexp tests that text outside placeholders is a regular expression
func TestTemplateRegexp(t *testing.T) {
	r := newTestRouter(t, RouterConfig{})
	mustHandle(t, r.HandleFunc(common.MethodGet, "/files/.*", textHandler("files")))
	mustHandle(t, r.HandleFunc(common.MethodGet, "/a|/b", textHandler("alt")))

	if _, found := r.HandleRequest(common.NewRequest(common.MethodGet, "/files/x/y.txt")); !found {
		t.Error("Expected /files/.* to match nested paths")
	}
	if _, found := r.HandleRequest(common.NewRequest(common.MethodGet, "/b")); !found {
		t.Error("Expected alternation to match /b")
	}
	if _, found := r.HandleRequest(common.NewRequest(common.MethodGet, "/a/c")); found {
		t.Error("Expected alternation to stay anchored")
	}
}

// TestInvalidTemplates tests registration errors
func TestInvalidTemplates(t *testing.T) {
	r := newTestRouter(t, RouterConfig{})
	for _, template := range []string{
		"/users/{id",
		"/users/id}",
		"/users/{}",
		"/users/{1id}",
		"/users/{a-b}",
		"/users/(",
	} {
		if err := r.HandleFunc(common.MethodGet, template, textHandler("x")); err == nil {
			t.Errorf("Expected error for template %q", template)
		}
	}

	if err := r.Handle(common.MethodGet, "/nil", nil); err == nil {
		t.Error("Expected error for nil handler")
	}
	if err := r.HandleFunc(common.Method("BREW"), "/pot", textHandler("x")); err == nil {
		t.Error("Expected error for unknown method")
	}
	if len(r.Routes()) != 0 {
		t.Errorf("Expected no routes after failed registrations, got %d", len(r.Routes()))
	}
}

// TestMiddlewareOrder tests global, sub-router and route middleware nesting
func TestMiddlewareOrder(t *testing.T) {
	var order []string
	record := func(name string) common.Middleware {
		return common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) *common.Response {
			order = append(order, name)
			return next.Handle(req, st)
		})
	}

	r := newTestRouter(t, RouterConfig{
		Middlewares: []common.Middleware{record("global")},
		SubRouters: []SubRouterConfig{{
			PathPrefix:  "/api",
			Middlewares: []common.Middleware{record("sub")},
			Routes: []RouteConfigBase{{
				Path:        "/ping",
				Methods:     []common.Method{common.MethodGet},
				Handler:     common.Stateless(textHandler("pong")),
				Middlewares: []common.Middleware{record("route")},
			}},
		}},
	})

	resp, found := r.HandleRequest(common.NewRequest(common.MethodGet, "/api/ping"))
	if !found || string(resp.Body) != "pong" {
		t.Fatalf("Expected pong, got found=%v resp=%v", found, resp)
	}

	expected := []string{"global", "sub", "route"}
	if len(order) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, order)
	}
	for i := range expected {
		if order[i] != expected[i] {
			t.Errorf("Expected %q at position %d, got %q", expected[i], i, order[i])
		}
	}
}

// TestMiddlewareShortCircuit tests that a middleware can answer without calling the handler
func TestMiddlewareShortCircuit(t *testing.T) {
	called := false
	deny := common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) *common.Response {
		return common.Text(common.StatusUnauthorized, "denied")
	})

	r := newTestRouter(t, RouterConfig{Middlewares: []common.Middleware{deny}})
	mustHandle(t, r.HandleFunc(common.MethodGet, "/", func(req *common.Request) *common.Response {
		called = true
		return common.OK()
	}))

	resp, _ := r.HandleRequest(common.NewRequest(common.MethodGet, "/"))
	if called {
		t.Error("Expected handler not to be called")
	}
	if resp.Status != common.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", common.StatusUnauthorized, resp.Status)
	}
}

// TestUseRecomposes tests that Use applies to routes registered earlier
func TestUseRecomposes(t *testing.T) {
	r := newTestRouter(t, RouterConfig{})
	mustHandle(t, r.HandleFunc(common.MethodGet, "/", textHandler("ok")))

	r.Use(common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) *common.Response {
		return next.Handle(req, st).SetHeader("X-Used", "yes")
	}))

	resp, _ := r.HandleRequest(common.NewRequest(common.MethodGet, "/"))
	if got, _ := resp.GetHeader("X-Used"); got != "yes" {
		t.Errorf("Expected X-Used header %q, got %q", "yes", got)
	}
}

// TestMiddlewareRequestCopies tests that request changes only flow inward
func TestMiddlewareRequestCopies(t *testing.T) {
	var outerSaw, handlerSaw string
	outer := common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) *common.Response {
		resp := next.Handle(req, st)
		outerSaw, _ = req.GetHeader("X-Inner")
		return resp
	})
	inner := common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) *common.Response {
		req.SetHeader("X-Inner", "set")
		return next.Handle(req, st)
	})

	r := newTestRouter(t, RouterConfig{Middlewares: []common.Middleware{outer, inner}})
	mustHandle(t, r.HandleFunc(common.MethodGet, "/", func(req *common.Request) *common.Response {
		handlerSaw, _ = req.GetHeader("X-Inner")
		return common.OK()
	}))

	r.HandleRequest(common.NewRequest(common.MethodGet, "/"))

	if handlerSaw != "set" {
		t.Errorf("Expected handler to see X-Inner, got %q", handlerSaw)
	}
	if outerSaw != "" {
		t.Errorf("Expected outer middleware not to see X-Inner, got %q", outerSaw)
	}
}

type counter struct {
	hits int64
}

// TestSharedState tests that every handler sees the same state value
func TestSharedState(t *testing.T) {
	r := newTestRouter(t, RouterConfig{})
	SetState(r, counter{})

	mustHandle(t, r.HandleStateful(common.MethodGet, "/hit", func(req *common.Request, st *state.State) *common.Response {
		c, ok := state.Get[counter](st)
		if !ok {
			return common.InternalServerError()
		}
		atomic.AddInt64(&c.hits, 1)
		return common.OK()
	}))

	for i := 0; i < 3; i++ {
		resp, _ := r.HandleRequest(common.NewRequest(common.MethodGet, "/hit"))
		if resp.Status != common.StatusOK {
			t.Fatalf("Expected status code %d, got %d", common.StatusOK, resp.Status)
		}
	}

	c, ok := state.Get[counter](r.State())
	if !ok {
		t.Fatal("Expected counter state")
	}
	if got := atomic.LoadInt64(&c.hits); got != 3 {
		t.Errorf("Expected 3 hits, got %d", got)
	}

	// A different type is not found
	if _, ok := state.Get[int](r.State()); ok {
		t.Error("Expected lookup with a different type to fail")
	}
}

// TestStatelessRouterState tests that a router starts with an empty state
func TestStatelessRouterState(t *testing.T) {
	r := newTestRouter(t, RouterConfig{})
	if !r.State().IsEmpty() {
		t.Error("Expected a new router to have an empty state")
	}
}

// TestDefaultHandler tests that the default handler bypasses middlewares
func TestDefaultHandler(t *testing.T) {
	mwCalled := false
	mw := common.MiddlewareFunc(func(req *common.Request, st *state.State, next common.Handler) *common.Response {
		mwCalled = true
		return next.Handle(req, st)
	})

	r := newTestRouter(t, RouterConfig{Middlewares: []common.Middleware{mw}})
	r.SetDefaultHandler(common.Stateless(textHandler("default")))

	resp, found := r.HandleRequest(common.NewRequest(common.MethodGet, "/anything"))
	if !found || string(resp.Body) != "default" {
		t.Fatalf("Expected default handler response, got found=%v resp=%v", found, resp)
	}
	if mwCalled {
		t.Error("Expected default handler to bypass middlewares")
	}
}

// TestNoMatchLogs tests the miss path
func TestNoMatchLogs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := newTestRouter(t, RouterConfig{Logger: zap.New(core)})

	resp, found := r.HandleRequest(common.NewRequest(common.MethodGet, "/missing"))
	if found || resp != nil {
		t.Errorf("Expected no match, got found=%v resp=%v", found, resp)
	}
	if logs.FilterMessage("No route matched").Len() != 1 {
		t.Errorf("Expected 1 no-match log entry, got %d", logs.FilterMessage("No route matched").Len())
	}
}

// TestPanicRecovered tests that a panicking handler becomes a 500
func TestPanicRecovered(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := newTestRouter(t, RouterConfig{Logger: zap.New(core), EnableTraceID: true})
	r.Use(middleware.TraceMiddleware())
	mustHandle(t, r.HandleFunc(common.MethodGet, "/panic", func(req *common.Request) *common.Response {
		panic("boom")
	}))

	resp, found := r.HandleRequest(common.NewRequest(common.MethodGet, "/panic"))
	if !found || resp.Status != common.StatusInternalServerError {
		t.Fatalf("Expected a 500 response, got found=%v resp=%v", found, resp)
	}
	if logs.Len() != 1 {
		t.Fatalf("Expected 1 log entry, got %d", logs.Len())
	}
	if logs.All()[0].Message != "Panic recovered" {
		t.Errorf("Expected log message %q, got %q", "Panic recovered", logs.All()[0].Message)
	}
}

// TestNilResponse tests that a nil handler result becomes a 500
func TestNilResponse(t *testing.T) {
	r := newTestRouter(t, RouterConfig{})
	mustHandle(t, r.HandleFunc(common.MethodGet, "/nil", func(req *common.Request) *common.Response {
		return nil
	}))

	resp, found := r.HandleRequest(common.NewRequest(common.MethodGet, "/nil"))
	if !found || resp == nil || resp.Status != common.StatusInternalServerError {
		t.Errorf("Expected a 500 response, got found=%v resp=%v", found, resp)
	}
}

// TestRoutes tests the route listing
func TestRoutes(t *testing.T) {
	r := newTestRouter(t, RouterConfig{})
	mustHandle(t, r.RegisterRoute(RouteConfigBase{
		Path:    "/multi",
		Methods: []common.Method{common.MethodGet, common.MethodPut},
		Handler: common.Stateless(textHandler("x")),
	}))

	routes := r.Routes()
	if len(routes) != 2 {
		t.Fatalf("Expected 2 routes, got %d", len(routes))
	}
	if routes[0].Method != common.MethodGet || routes[1].Method != common.MethodPut || routes[1].Path != "/multi" {
		t.Errorf("Unexpected routes %v", routes)
	}
}
