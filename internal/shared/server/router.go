package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobbuddy-backend/internal/shared/config"
	"jobbuddy-backend/internal/shared/metrics"
	"jobbuddy-backend/internal/shared/server/middleware"
	"jobbuddy-backend/internal/shared/server/respond"
)

const apiPrefix = "/api/v1"

// RouteRegistrar attaches a feature's routes to the API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries what NewRouter needs from bootstrap.
type RouterDeps struct {
	Config   config.Config
	Verifier middleware.TokenVerifier
	// Limiter defaults to an in-process token bucket.
	Limiter  middleware.Limiter
	Handlers []RouteRegistrar
	// Ping reports storage health; nil means memory-backed.
	Ping func(ctx context.Context) error
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Verifier,
			apiPrefix+"/auth/",
			apiPrefix+"/health",
			apiPrefix+"/metrics",
		),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    analyzeRules(deps.Config),
			GroupFor: middleware.AnalyzeGroup,
			Limiter:  limiter,
		}),
	)

	api := r.Group(apiPrefix)
	api.GET("/health", healthHandler(deps.Ping))
	api.GET("/metrics", metrics.Handler())
	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	return r
}

func analyzeRules(cfg config.Config) map[string]middleware.RateLimitRule {
	if cfg.AnalyzeRatePerMinute <= 0 || cfg.AnalyzeBurst <= 0 {
		return nil
	}
	return map[string]middleware.RateLimitRule{
		"ANALYZE": {Rate: cfg.AnalyzeRatePerMinute / 60, Burst: cfg.AnalyzeBurst},
	}
}

func healthHandler(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true, "storage": "memory"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			respond.JSON(c, http.StatusServiceUnavailable, gin.H{"ok": false, "storage": "postgres"})
			return
		}
		respond.JSON(c, http.StatusOK, gin.H{"ok": true, "storage": "postgres"})
	}
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
