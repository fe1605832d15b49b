package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-pipeline/internal/shared/config"
	"resume-pipeline/internal/shared/metrics"
	"resume-pipeline/internal/shared/server/middleware"
	"resume-pipeline/internal/shared/server/respond"
)

// RouteRegistrar attaches a feature's routes to the API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// NewRouter constructs the Gin engine with middleware and routes
// registered. Health and metrics sit outside the identity layer so
// probes and scrapers need no headers.
func NewRouter(cfg config.Config, registrars ...RouteRegistrar) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.GET("/healthz", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(
		middleware.Identity(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: 5, Burst: 10},
				"POLLING": {Rate: 2, Burst: 5},
			},
			GroupFor: pollingGroup,
		}),
	)
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	for _, reg := range registrars {
		if reg == nil {
			continue
		}
		reg.RegisterRoutes(api)
	}

	return r
}

func pollingGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodGet && strings.HasPrefix(c.FullPath(), "/api/v1/resumes/") {
		return "POLLING"
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
