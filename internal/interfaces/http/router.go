// Package http assembles the apiserver's route tree and server lifecycle.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AcroLex/internal/interfaces/http/handlers"
	"github.com/turtacn/AcroLex/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies for the
// route tree.
type RouterConfig struct {
	HealthHandler *handlers.HealthHandler
	EngineHandler *handlers.EngineHandler

	Logger  logging.Logger
	Logging middleware.LoggingConfig

	// MetricsGatherer, when set, exposes /metrics.
	MetricsGatherer prometheus.Gatherer
}

// NewRouter wires global middleware, probes, metrics, and the v1 API group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsGatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{})))
	}

	if cfg.EngineHandler != nil {
		v1 := r.Group("/api/v1")
		v1.POST("/expand", cfg.EngineHandler.Expand)
		v1.POST("/score", cfg.EngineHandler.Score)
		v1.GET("/acronyms", cfg.EngineHandler.Acronyms)
		v1.GET("/acronyms/:surface", cfg.EngineHandler.Lookup)
	}
	return r
}
