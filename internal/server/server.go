package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/lab-edge/internal/config"
	"github.com/ethpandaops/lab-edge/internal/function"
	"github.com/ethpandaops/lab-edge/internal/handlers"
	"github.com/ethpandaops/lab-edge/internal/headers"
	"github.com/ethpandaops/lab-edge/internal/middleware"
	"github.com/ethpandaops/lab-edge/internal/proxy"
)

// Refresher is implemented by sites that can reload their content.
type Refresher interface {
	Refresh() error
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	proxy      *proxy.Proxy
	site       http.Handler
	logger     logrus.FieldLogger
}

// New creates a new HTTP server with all routes and middleware.
// site serves everything not claimed by a proxy route.
func New(logger logrus.FieldLogger, cfg *config.Config, site http.Handler) (*Server, error) {
	proxyHandler, err := proxy.New(logger, cfg.Routes, site)
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy: %w", err)
	}

	headerManager, err := headers.NewManager(cfg.Headers.Policies)
	if err != nil {
		return nil, fmt.Errorf("failed to create header manager: %w", err)
	}

	mux := http.NewServeMux()

	// Host endpoints, outside the function deployment scope
	mux.HandleFunc("GET /health", handlers.Health(proxyHandler.RouteCount))
	logger.WithField("route", "GET /health").Info("Registered route")

	mux.Handle("GET /metrics", promhttp.Handler())
	logger.WithField("route", "GET /metrics").Info("Registered route")

	// Function chain: CORS gate → header policies → proxy routes or static site
	var chain http.Handler = middleware.Headers(headerManager, logger)(proxyHandler)
	chain = middleware.CORS(logger, function.Env(cfg.Env))(chain)

	mux.Handle("/", chain)
	logger.WithFields(logrus.Fields{
		"routes":          proxyHandler.RouteCount(),
		"header_policies": headerManager.Len(),
	}).Info("Registered function chain on /")

	// Apply middleware chain: Logging → Metrics → Recovery
	handler := middleware.Logging(logger)(mux)
	handler = middleware.Metrics()(handler)
	handler = middleware.Recovery(logger)(handler)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
		proxy:      proxyHandler,
		site:       site,
		logger:     logger.WithField("component", "server"),
	}, nil
}

// Reload applies the routes in cfg to the running server and refreshes the
// site. Routes missing from cfg are removed. Server settings and header
// policies only change on restart.
func (s *Server) Reload(cfg *config.Config) error {
	for _, name := range s.proxy.RouteNames() {
		if _, err := cfg.GetRouteByName(name); err != nil {
			s.proxy.RemoveRoute(name)
		}
	}

	for _, rc := range cfg.Routes {
		if err := s.proxy.UpdateRoute(rc); err != nil {
			return fmt.Errorf("failed to update route %s: %w", rc.Name, err)
		}
	}

	if r, ok := s.site.(Refresher); ok {
		if err := r.Refresh(); err != nil {
			return fmt.Errorf("failed to refresh site: %w", err)
		}
	}

	s.logger.WithField("routes", s.proxy.RouteCount()).Info("Configuration reloaded")

	return nil
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server (blocking call).
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting HTTP server")

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	return s.httpServer.Shutdown(ctx)
}
