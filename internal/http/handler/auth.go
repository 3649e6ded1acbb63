package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"basegraph.app/workspaces/internal/http/dto"
	"basegraph.app/workspaces/internal/http/middleware"
	"basegraph.app/workspaces/internal/model"
	"basegraph.app/workspaces/internal/service"
)

const (
	stateCookieName = "workspace_oauth_state"
	stateMaxAge     = 600
)

var sessionMaxAge = int(service.SessionTTL.Seconds())

type AuthHandler struct {
	authService  service.AuthService
	dashboardURL string
	isProduction bool
}

func NewAuthHandler(authService service.AuthService, dashboardURL string, isProduction bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		dashboardURL: dashboardURL,
		isProduction: isProduction,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	state, err := generateState()
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to generate state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to initiate login"})
		return
	}

	authURL, err := h.authService.GetAuthorizationURL(state)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to get authorization URL", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to initiate login"})
		return
	}

	c.SetCookie(stateCookieName, state, stateMaxAge, "/", "", h.isProduction, true)
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

func (h *AuthHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	code := c.Query("code")
	state := c.Query("state")

	if errorParam := c.Query("error"); errorParam != "" {
		slog.WarnContext(ctx, "OAuth error", "error", errorParam, "description", c.Query("error_description"))
		h.redirectWithError(c, errorParam)
		return
	}

	storedState, err := c.Cookie(stateCookieName)
	if err != nil || state == "" || state != storedState {
		slog.WarnContext(ctx, "state mismatch")
		h.redirectWithError(c, "invalid_state")
		return
	}

	h.clearStateCookie(c)

	if code == "" {
		h.redirectWithError(c, "no_code")
		return
	}

	result, err := h.authService.HandleCallback(ctx, code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to handle callback", "error", err)
		if errors.Is(err, service.ErrInvalidCode) {
			h.redirectWithError(c, "invalid_code")
			return
		}
		h.redirectWithError(c, "callback_failed")
		return
	}

	c.SetCookie(
		middleware.SessionCookieName,
		strconv.FormatInt(result.Session.ID, 10),
		sessionMaxAge,
		"/",
		"",
		h.isProduction,
		true,
	)

	slog.InfoContext(ctx, "user logged in", "user_id", result.User.ID)
	c.Redirect(http.StatusTemporaryRedirect, h.dashboardURL+"/dashboard")
}

func (h *AuthHandler) Me(c *gin.Context) {
	caller := middleware.GetCaller(c.Request.Context())
	if caller.User == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	resp := dto.MeResponse{User: dto.ToUserResponse(caller.User)}
	if caller.Workspace != nil {
		resp.CurrentWorkspace = caller.Workspace
	} else if caller.Session != nil && caller.Session.OrganizationID != nil {
		resp.CurrentWorkspace = &model.CurrentWorkspace{OrgCode: *caller.Session.OrganizationID}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	if sessionID, err := middleware.SessionID(c); err == nil {
		if err := h.authService.Logout(ctx, sessionID); err != nil {
			slog.WarnContext(ctx, "failed to delete session", "error", err, "session_id", sessionID)
		}
	}

	middleware.ClearSessionCookie(c, h.isProduction)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) redirectWithError(c *gin.Context, code string) {
	c.Redirect(http.StatusTemporaryRedirect, h.dashboardURL+"?auth_error="+url.QueryEscape(code))
}

func (h *AuthHandler) clearStateCookie(c *gin.Context) {
	c.SetCookie(stateCookieName, "", -1, "/", "", h.isProduction, true)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
