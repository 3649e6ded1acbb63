package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/workspaces/internal/http/handler"
)

type WorkspaceMiddleware struct {
	Auth       gin.HandlerFunc
	Workspace  gin.HandlerFunc
	Standard   gin.HandlerFunc
	HeavyWrite gin.HandlerFunc
}

func WorkspaceRouter(rg *gin.RouterGroup, h *handler.WorkspaceHandler, mw WorkspaceMiddleware) {
	rg.Use(mw.Auth, mw.Standard)

	rg.GET("", mw.Workspace, h.List)
	rg.POST("", mw.Workspace, mw.HeavyWrite, h.Create)
	// switching is how a session without a workspace gets one
	rg.POST("/switch", h.Switch)
}
