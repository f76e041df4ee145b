// Package http exposes the variant service over HTTP with gin.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/internal/interfaces/http/handlers"
	"github.com/turtacn/minorchanges/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree.  Nil members are skipped.
type RouterConfig struct {
	// Mode is the gin mode: "debug", "release" or "test".
	Mode string

	VariantHandler *handlers.VariantHandler
	HealthHandler  *handlers.HealthHandler

	Logger        logging.Logger
	LoggingConfig middleware.LoggingConfig
	HTTPRecorder  middleware.HTTPRecorder
	// MetricsHandler is mounted at MetricsPath when set.
	MetricsHandler http.Handler
	MetricsPath    string
	RateLimiter    middleware.RateLimiter
	RateLimit      middleware.RateLimitConfig
	MaxBodySize    int64
}

// NewRouter builds the gin engine: global middleware, public probes and
// metrics, then the /v1 API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.LoggingConfig))
	if cfg.HTTPRecorder != nil {
		r.Use(middleware.Metrics(cfg.HTTPRecorder))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsHandler))
	}

	v1 := r.Group("/v1")
	if cfg.RateLimiter != nil {
		v1.Use(middleware.RateLimit(cfg.RateLimiter, cfg.RateLimit))
	}
	if cfg.MaxBodySize > 0 {
		v1.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	registerVariantRoutes(v1, cfg.VariantHandler)

	return r
}

func registerVariantRoutes(rg *gin.RouterGroup, h *handlers.VariantHandler) {
	if h == nil {
		return
	}
	rg.POST("/variants", h.Generate)
	rg.GET("/rules", h.ListRules)
	rg.GET("/runs/:id/variants", h.ListRunVariants)
}

//Personal.AI order the ending
