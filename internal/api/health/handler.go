package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"helios/internal/adapters/broker"
	"helios/pkg/logger"
)

// Pinger is any dependency that can report connectivity.
type Pinger interface {
	Health(ctx context.Context) error
}

// Handler provides health check endpoints.
type Handler struct {
	log         *logger.Logger
	broker      broker.Broker
	cache       Pinger
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a new health check handler. cache may be nil when Redis is
// not configured.
func New(log *logger.Logger, b broker.Broker, cache Pinger, serviceName, version string) *Handler {
	return &Handler{
		log:         log,
		broker:      b,
		cache:       cache,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status    string                     `json:"status"` // "healthy" or "unhealthy"
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 OK if the service is running. Used by the
// Kubernetes liveness probe.
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// HandleReadiness checks whether the service can reach its dependencies.
// Used by the Kubernetes readiness probe.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]ComponentHealth)
	allHealthy := true

	brokerHealth := h.checkBroker(ctx)
	checks["broker"] = brokerHealth
	if brokerHealth.Status != "healthy" {
		allHealthy = false
	}

	if h.cache != nil {
		cacheHealth := h.checkCache(ctx)
		checks["redis"] = cacheHealth
		if cacheHealth.Status != "healthy" {
			allHealthy = false
		}
	}

	status := HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if !allHealthy {
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
		h.log.Warnw("Readiness check failed", "checks", checks)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(status)
}

// HandleHealth reports the same dependency checks as readiness but always
// returns 200 so dashboards can read the detail.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]ComponentHealth{
		"broker": h.checkBroker(ctx),
	}
	if h.cache != nil {
		checks["redis"] = h.checkCache(ctx)
	}

	status := HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}
	for _, c := range checks {
		if c.Status != "healthy" {
			status.Status = "degraded"
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(status)
}

// checkBroker verifies the trading API is reachable via the market clock.
func (h *Handler) checkBroker(ctx context.Context) ComponentHealth {
	if h.broker == nil {
		return ComponentHealth{Status: "unhealthy", Error: "not configured"}
	}

	start := time.Now()
	_, err := h.broker.GetClock(ctx)
	elapsed := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:       "unhealthy",
			ResponseTime: elapsed.String(),
			Error:        fmt.Sprintf("%v", err),
		}
	}
	return ComponentHealth{Status: "healthy", ResponseTime: elapsed.String()}
}

func (h *Handler) checkCache(ctx context.Context) ComponentHealth {
	start := time.Now()
	err := h.cache.Health(ctx)
	elapsed := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:       "unhealthy",
			ResponseTime: elapsed.String(),
			Error:        fmt.Sprintf("%v", err),
		}
	}
	return ComponentHealth{Status: "healthy", ResponseTime: elapsed.String()}
}
