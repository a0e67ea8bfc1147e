// Package admin serves the operator endpoints of an SServer process over net/http:
// Prometheus metrics, a health check and the list of registered routes.
// It runs on its own address, separate from the HTTP/1.1 engine it reports on.
package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Suhaibinator/SServer/pkg/router"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Config configures the admin endpoints.
type Config struct {
	Logger *zap.Logger // Logger for admin requests

	// Gatherer is exposed on /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Routers are listed on /routes in the order the server tries them
	Routers []*router.Router

	// Health reports an error when the process should be considered unhealthy (optional)
	Health func() error
}

// Admin is an http.Handler with the admin endpoints.
type Admin struct {
	config Config
	logger *zap.Logger
	router *httprouter.Router
}

// routeEntry is one line of the /routes listing
type routeEntry struct {
	Router int `json:"router"`
	router.RouteInfo
}

// New creates the admin handler.
func New(config Config) *Admin {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gatherer := config.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	a := &Admin{
		config: config,
		logger: logger,
		router: httprouter.New(),
	}

	a.router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	a.router.GET("/healthz", a.health)
	a.router.GET("/routes", a.routes)
	return a
}

// ServeHTTP implements http.Handler.
func (a *Admin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Admin request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("remote_addr", r.RemoteAddr),
	)
	a.router.ServeHTTP(w, r)
}

// Server returns an *http.Server serving the admin endpoints on addr.
func (a *Admin) Server(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           a,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (a *Admin) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if a.config.Health != nil {
		if err := a.config.Health(); err != nil {
			a.logger.Warn("Health check failed", zap.Error(err))
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (a *Admin) routes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	entries := make([]routeEntry, 0)
	for i, rt := range a.config.Routers {
		for _, info := range rt.Routes() {
			entries = append(entries, routeEntry{Router: i, RouteInfo: info})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		a.logger.Error("Failed to encode routes", zap.Error(err))
	}
}
