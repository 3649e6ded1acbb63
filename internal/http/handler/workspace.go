package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"basegraph.app/workspaces/internal/http/dto"
	"basegraph.app/workspaces/internal/http/middleware"
	"basegraph.app/workspaces/internal/service"
)

type WorkspaceHandler struct {
	workspaceService service.WorkspaceService
}

func NewWorkspaceHandler(workspaceService service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.workspaceService.List(ctx, middleware.GetCaller(ctx))
	if err != nil {
		writeWorkspaceError(c, err, "failed to list workspaces")
		return
	}

	c.JSON(http.StatusOK, dto.ToListWorkspacesResponse(result))
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidWorkspaceName.Error()})
		return
	}

	result, err := h.workspaceService.Create(ctx, middleware.GetCaller(ctx), req.Name)
	if err != nil {
		writeWorkspaceError(c, err, "failed to create workspace")
		return
	}

	c.JSON(http.StatusCreated, dto.ToCreateWorkspaceResponse(result))
}

func (h *WorkspaceHandler) Switch(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SwitchWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := h.workspaceService.Switch(ctx, middleware.GetCaller(ctx), req.OrgCode)
	if err != nil {
		writeWorkspaceError(c, err, "failed to switch workspace")
		return
	}

	c.JSON(http.StatusOK, dto.SwitchWorkspaceResponse{CurrentWorkspace: current})
}

// writeWorkspaceError maps service errors to responses. Provisioning failures
// return their message; the failed step is only logged.
func writeWorkspaceError(c *gin.Context, err error, fallback string) {
	ctx := c.Request.Context()

	var perr *service.ProvisioningError
	switch {
	case errors.As(err, &perr):
		slog.WarnContext(ctx, "workspace provisioning failed", "error", err, "step", perr.Step)
		c.JSON(http.StatusForbidden, gin.H{"error": perr.Message, "code": "FORBIDDEN"})
	case errors.Is(err, service.ErrNoOrganizations),
		errors.Is(err, service.ErrNoWorkspace),
		errors.Is(err, service.ErrWorkspaceSwitch):
		slog.WarnContext(ctx, "workspace request forbidden", "error", err)
		c.JSON(http.StatusForbidden, gin.H{"error": forbiddenMessage(err), "code": "FORBIDDEN"})
	case errors.Is(err, service.ErrSessionExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
	case errors.Is(err, service.ErrInvalidWorkspaceName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(ctx, fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func forbiddenMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrNoOrganizations):
		return service.ErrNoOrganizations.Error()
	case errors.Is(err, service.ErrNoWorkspace):
		return service.ErrNoWorkspace.Error()
	default:
		return service.ErrWorkspaceSwitch.Error()
	}
}
