package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/workspaces/internal/http/middleware"
	"basegraph.app/workspaces/internal/ratelimit"
)

var _ = Describe("RateLimit", func() {
	var (
		router  *gin.Engine
		limiter *mockLimiter
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		limiter = &mockLimiter{}
		router.POST("/write", middleware.RateLimit(limiter, ratelimit.PolicyHeavyWrite), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
	})

	serve := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/write", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("allows requests within the budget", func() {
		limiter.decision = ratelimit.Decision{Allowed: true, Limit: 5, Remaining: 4}

		w := serve()

		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(w.Header().Get("X-RateLimit-Remaining")).To(Equal("4"))
		Expect(limiter.calls).To(HaveLen(1))
		Expect(limiter.calls[0].policy).To(Equal(ratelimit.PolicyHeavyWrite))
		Expect(limiter.calls[0].subject).To(Equal("ip:203.0.113.7"))
	})

	It("returns 429 with Retry-After when the budget is spent", func() {
		limiter.decision = ratelimit.Decision{Allowed: false, Limit: 5, RetryAfter: 1500 * time.Millisecond}

		w := serve()

		Expect(w.Code).To(Equal(http.StatusTooManyRequests))
		Expect(w.Header().Get("Retry-After")).To(Equal("2"))
	})

	It("fails open when the limiter errors", func() {
		limiter.err = errors.New("redis down")

		Expect(serve().Code).To(Equal(http.StatusNoContent))
	})
})
