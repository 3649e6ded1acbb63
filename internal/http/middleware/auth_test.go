package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/workspaces/internal/http/middleware"
	"basegraph.app/workspaces/internal/model"
	"basegraph.app/workspaces/internal/service"
)

var _ = Describe("RequireAuth", func() {
	var (
		router *gin.Engine
		auth   *mockAuthService
		seen   service.Caller
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		auth = &mockAuthService{}
		seen = service.Caller{}

		router.GET("/private", middleware.RequireAuth(auth), middleware.RequireWorkspace(), func(c *gin.Context) {
			seen = middleware.GetCaller(c.Request.Context())
			c.Status(http.StatusNoContent)
		})
	})

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("resolves the caller from the session header", func() {
		org := "org_1"
		auth.validateFn = func(_ context.Context, id int64) (*model.User, *model.Session, error) {
			Expect(id).To(Equal(int64(12)))
			return &model.User{ID: 3}, &model.Session{ID: id, OrganizationID: &org}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set(middleware.SessionIDHeader, "12")

		Expect(serve(req).Code).To(Equal(http.StatusNoContent))
		Expect(seen.User.ID).To(Equal(int64(3)))
		Expect(seen.Session.ID).To(Equal(int64(12)))
		Expect(seen.Workspace).To(Equal(&model.CurrentWorkspace{OrgCode: "org_1"}))
	})

	It("prefers the cookie over the header", func() {
		auth.validateFn = func(_ context.Context, id int64) (*model.User, *model.Session, error) {
			Expect(id).To(Equal(int64(7)))
			return &model.User{ID: 3}, &model.Session{ID: id, OrganizationID: new(string)}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "7"})
		req.Header.Set(middleware.SessionIDHeader, "12")

		// empty organization is treated as no workspace
		Expect(serve(req).Code).To(Equal(http.StatusForbidden))
	})

	DescribeTable("rejects unusable session IDs",
		func(value string) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if value != "" {
				req.Header.Set(middleware.SessionIDHeader, value)
			}

			Expect(serve(req).Code).To(Equal(http.StatusUnauthorized))
		},
		Entry("missing", ""),
		Entry("not a number", "abc"),
		Entry("negative", "-4"),
	)

	It("returns 500 when validation fails unexpectedly", func() {
		auth.validateFn = func(context.Context, int64) (*model.User, *model.Session, error) {
			return nil, nil, errors.New("db down")
		}

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set(middleware.SessionIDHeader, "12")

		Expect(serve(req).Code).To(Equal(http.StatusInternalServerError))
	})
})
