package middleware_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/workspaces/common/logger"
	"basegraph.app/workspaces/internal/http/middleware"
)

var _ = Describe("RequestID", func() {
	var (
		router *gin.Engine
		seen   *string
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		seen = nil
		router.GET("/", middleware.RequestID(), func(c *gin.Context) {
			seen = logger.GetLogFields(c.Request.Context()).RequestID
			c.Status(http.StatusOK)
		})
	})

	It("keeps an inbound request ID", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Header().Get(middleware.RequestIDHeader)).To(Equal("req-123"))
		Expect(*seen).To(Equal("req-123"))
	})

	It("generates a UUID when none is sent", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		generated := w.Header().Get(middleware.RequestIDHeader)
		_, err := uuid.Parse(generated)
		Expect(err).NotTo(HaveOccurred())
		Expect(*seen).To(Equal(generated))
	})
})
