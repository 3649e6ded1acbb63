package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/workspaces/common/id"
	"basegraph.app/workspaces/common/logger"
	"basegraph.app/workspaces/internal/model"
	"basegraph.app/workspaces/internal/service"
)

type contextKey string

const (
	SessionCookieName = "workspace_session"
	SessionIDHeader   = "X-Session-ID"

	callerContextKey contextKey = "caller"
)

// RequireAuth resolves the session cookie (or X-Session-ID header) into a
// service.Caller stored on the request context.
func RequireAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := SessionID(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		user, session, err := authService.ValidateSession(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, service.ErrSessionExpired) || errors.Is(err, service.ErrUserNotFound) {
				ClearSessionCookie(c, false)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to validate session"})
			return
		}

		ctx := withCaller(c.Request.Context(), service.Caller{User: user, Session: session})
		ctx = logger.WithLogFields(ctx, logger.LogFields{
			UserID:    &user.ID,
			SessionID: &session.ID,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireWorkspace must run after RequireAuth. It scopes the caller to the
// organization the session tokens were issued for.
func RequireWorkspace() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := GetCaller(c.Request.Context())
		if caller.Session == nil || caller.Session.OrganizationID == nil || *caller.Session.OrganizationID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": service.ErrNoWorkspace.Error(),
				"code":  "FORBIDDEN",
			})
			return
		}

		orgCode := *caller.Session.OrganizationID
		caller.Workspace = &model.CurrentWorkspace{OrgCode: orgCode}

		ctx := withCaller(c.Request.Context(), caller)
		ctx = logger.WithLogFields(ctx, logger.LogFields{OrgCode: &orgCode})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func GetCaller(ctx context.Context) service.Caller {
	caller, _ := ctx.Value(callerContextKey).(service.Caller)
	return caller
}

func withCaller(ctx context.Context, caller service.Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

// SessionID reads the session ID from the cookie, falling back to the
// X-Session-ID header used by non-browser clients.
func SessionID(c *gin.Context) (int64, error) {
	raw, err := c.Cookie(SessionCookieName)
	if err != nil || raw == "" {
		raw = c.GetHeader(SessionIDHeader)
	}
	return id.Parse(raw)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetCookie(
		SessionCookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
