package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/workspaces/internal/http/handler"
	"basegraph.app/workspaces/internal/http/middleware"
	"basegraph.app/workspaces/internal/ratelimit"
	"basegraph.app/workspaces/internal/service"
)

type RouterConfig struct {
	DashboardURL string
	IsProduction bool
	Limiter      ratelimit.Limiter // nil disables rate limiting
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authService := services.Auth()
	requireAuth := middleware.RequireAuth(authService)

	authHandler := handler.NewAuthHandler(authService, cfg.DashboardURL, cfg.IsProduction)
	AuthRouter(router.Group("/auth"), authHandler, requireAuth)

	v1 := router.Group("/api/v1")
	{
		workspaceHandler := handler.NewWorkspaceHandler(services.Workspaces())
		WorkspaceRouter(v1.Group("/workspace"), workspaceHandler, WorkspaceMiddleware{
			Auth:       requireAuth,
			Workspace:  middleware.RequireWorkspace(),
			Standard:   rateLimit(cfg.Limiter, ratelimit.PolicyStandard),
			HeavyWrite: rateLimit(cfg.Limiter, ratelimit.PolicyHeavyWrite),
		})
	}
}

func rateLimit(limiter ratelimit.Limiter, policy ratelimit.Policy) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(limiter, policy)
}
