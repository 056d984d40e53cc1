package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/soccer-scout-service/internal/service"
)

// Pinger is the minimal contract I need to check readiness.
// I keep it local to the handler package to avoid coupling and simplify tests.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler exposes liveness, readiness and the data status report.
type HealthHandler struct {
	ready Pinger
	svc   service.ScoutService
}

func NewHealthHandler(ready Pinger, svc service.ScoutService) *HealthHandler {
	return &HealthHandler{ready: ready, svc: svc}
}

func (h *HealthHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/health")
	{
		g.GET("", h.status)
		g.GET("/live", h.Liveness)
		g.GET("/ready", h.Readiness)
	}
}

// Liveness responds OK if the process is up; it doesn't check dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness reports whether player data is loaded and queries can be served.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.ready == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "player store not loaded"})
		return
	}
	if err := h.ready.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// status is GET /api/health: data coverage plus whether the model is configured.
// It answers 200 even when degraded so dashboards can read the body.
func (h *HealthHandler) status(c *gin.Context) {
	if h.svc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	health := h.svc.Health(c.Request.Context())
	code := http.StatusOK
	if health.Status == "unavailable" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, health)
}
