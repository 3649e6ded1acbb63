package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"basegraph.app/workspaces/internal/ratelimit"
)

// RateLimit applies policy per authenticated user, or per client IP before
// authentication. Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, policy ratelimit.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		subject := "ip:" + c.ClientIP()
		if caller := GetCaller(ctx); caller.User != nil {
			subject = "user:" + strconv.FormatInt(caller.User.ID, 10)
		}

		decision, err := limiter.Allow(ctx, policy, subject)
		if err != nil {
			slog.WarnContext(ctx, "rate limiter unavailable, allowing request", "error", err, "policy", policy)
			c.Next()
			return
		}

		if decision.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		}

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			slog.WarnContext(ctx, "rate limit exceeded", "policy", policy, "subject", subject)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
				"code":  "RATE_LIMITED",
			})
			return
		}

		c.Next()
	}
}
