package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/maxviazov/soccer-scout-service/internal/metrics"
	"github.com/maxviazov/soccer-scout-service/internal/service"
	"github.com/rs/zerolog"
)

// Register installs the middleware chain and mounts all public routes.
// A nil metrics manager disables /metrics and request metrics.
func Register(r *gin.Engine, ready Pinger, svc service.ScoutService, m *metrics.Manager, logger zerolog.Logger) {
	log := logger.With().Str("module", "http").Logger()
	r.Use(RequestID(), RequestLogger(log), Metrics(m))

	h := NewHealthHandler(ready, svc)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	RegisterDocs(r)

	api := r.Group(APIPrefix)
	{
		h.Register(api)
		NewQueryHandler(svc, log).Register(api)
	}
	r.NoRoute(notFound)
}
