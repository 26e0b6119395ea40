package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"helios/internal/agents"
	"helios/internal/api/health"
	"helios/internal/metrics"
	"helios/internal/tools"
	"helios/pkg/errors"
	"helios/pkg/logger"
)

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	Port        int
	ServiceName string
	Version     string
}

// Server wraps the HTTP server with lifecycle management.
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer creates and configures the HTTP server with all routes.
func NewServer(cfg ServerConfig, registry *tools.Registry, store *agents.Store, runner *agents.Runner, healthHandler *health.Handler, log *logger.Logger) *Server {
	mux := http.NewServeMux()

	// Health check endpoints (Kubernetes probes)
	mux.HandleFunc("/health", healthHandler.HandleHealth)
	mux.HandleFunc("/ready", healthHandler.HandleReadiness)
	mux.HandleFunc("/live", healthHandler.HandleLiveness)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", metrics.Handler())

	h := &handlers{registry: registry, store: store, runner: runner, log: log}

	// Tool registry
	mux.HandleFunc("GET /tools", h.listTools)
	mux.HandleFunc("GET /tools/categories", h.listCategories)
	mux.HandleFunc("GET /tools/schema", h.exportSchema)
	mux.HandleFunc("GET /tools/{name}/schema", h.toolSchema)
	mux.HandleFunc("POST /tools/{name}/execute", h.executeTool)
	mux.HandleFunc("PATCH /tools/{name}", h.setToolEnabled)

	// Agents
	mux.HandleFunc("GET /agents", h.listAgents)
	mux.HandleFunc("POST /agents", h.saveAgent)
	mux.HandleFunc("GET /agents/{name}", h.getAgent)
	mux.HandleFunc("DELETE /agents/{name}", h.deleteAgent)
	mux.HandleFunc("POST /agents/{name}/analyze", h.analyze)

	// Root endpoint (service info)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"service":"%s","version":"%s","status":"running"}`,
			cfg.ServiceName, cfg.Version)
	})

	port := 8080
	if cfg.Port > 0 {
		port = cfg.Port
	}

	log.Infof("HTTP server configured on port %d", port)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // analysis runs can be slow
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		log:        log,
	}
}

// Start begins listening for HTTP requests. Blocks until the server is
// stopped or fails.
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server failed")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}

	return nil
}
