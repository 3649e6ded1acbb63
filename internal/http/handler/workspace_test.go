package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/workspaces/common/palette"
	"basegraph.app/workspaces/internal/http/handler"
	"basegraph.app/workspaces/internal/http/middleware"
	"basegraph.app/workspaces/internal/model"
	"basegraph.app/workspaces/internal/service"
)

var _ = Describe("WorkspaceHandler", func() {
	var (
		router *gin.Engine
		svc    *mockWorkspaceService
		auth   *mockAuthService
		user   *model.User
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var reader *bytes.Buffer
		if body != "" {
			reader = bytes.NewBufferString(body)
		} else {
			reader = &bytes.Buffer{}
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "1001"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder) map[string]any {
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		return resp
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockWorkspaceService{}
		auth = &mockAuthService{}
		user = &model.User{ID: 42, WorkOSID: "user_01", Name: "Test User", Email: "test@example.com"}
		signedInAs(auth, user, strPtr("abc"))

		h := handler.NewWorkspaceHandler(svc)
		group := router.Group("/api/v1/workspace", middleware.RequireAuth(auth))
		group.GET("", middleware.RequireWorkspace(), h.List)
		group.POST("", middleware.RequireWorkspace(), h.Create)
		group.POST("/switch", h.Switch)
	})

	Describe("List", func() {
		It("returns decorated workspaces with the user and current workspace", func() {
			var got service.Caller
			svc.listFn = func(_ context.Context, caller service.Caller) (*service.ListWorkspacesResult, error) {
				got = caller
				return &service.ListWorkspacesResult{
					Workspaces: []model.Workspace{
						{ID: "abc", Name: "Acme", Avatar: "A"},
						{ID: "def", Name: "Globex", Avatar: "G"},
					},
					User:             caller.User,
					CurrentWorkspace: caller.Workspace,
				}, nil
			}

			w := do(http.MethodGet, "/api/v1/workspace", "")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got.User).To(Equal(user))
			Expect(got.Session.ID).To(Equal(int64(1001)))
			Expect(got.Workspace.OrgCode).To(Equal("abc"))

			resp := decode(w)
			workspaces := resp["workspaces"].([]any)
			Expect(workspaces).To(HaveLen(2))

			first := workspaces[0].(map[string]any)
			Expect(first["id"]).To(Equal("abc"))
			Expect(first["name"]).To(Equal("Acme"))
			Expect(first["avatar"]).To(Equal("A"))
			Expect(first["color"]).To(Equal(palette.ColorFor("abc")))
			Expect(first["isCurrent"]).To(BeTrue())
			Expect(workspaces[1].(map[string]any)["isCurrent"]).To(BeFalse())

			Expect(resp["currentWorkspace"]).To(Equal(map[string]any{"orgCode": "abc"}))
			Expect(resp["user"].(map[string]any)["id"]).To(Equal("42"))
		})

		It("returns 403 when the provider has no organizations for the user", func() {
			svc.listFn = func(context.Context, service.Caller) (*service.ListWorkspacesResult, error) {
				return nil, service.ErrNoOrganizations
			}

			w := do(http.MethodGet, "/api/v1/workspace", "")

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(decode(w)["code"]).To(Equal("FORBIDDEN"))
		})

		It("returns 500 on provider failures", func() {
			svc.listFn = func(context.Context, service.Caller) (*service.ListWorkspacesResult, error) {
				return nil, errors.New("connection reset")
			}

			w := do(http.MethodGet, "/api/v1/workspace", "")

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})

		It("returns 403 when the session has no workspace", func() {
			signedInAs(auth, user, nil)

			w := do(http.MethodGet, "/api/v1/workspace", "")

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(decode(w)["error"]).To(Equal(service.ErrNoWorkspace.Error()))
		})

		It("returns 401 without a session", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/workspace", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("Create", func() {
		It("returns 201 with the org code and workspace name", func() {
			svc.createFn = func(_ context.Context, _ service.Caller, name string) (*service.CreateWorkspaceResult, error) {
				return &service.CreateWorkspaceResult{OrgCode: "xyz", WorkspaceName: name}, nil
			}

			w := do(http.MethodPost, "/api/v1/workspace", `{"name":"Test Co"}`)

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(decode(w)).To(Equal(map[string]any{"orgCode": "xyz", "workspaceName": "Test Co"}))
		})

		DescribeTable("rejects invalid bodies",
			func(body string) {
				called := false
				svc.createFn = func(context.Context, service.Caller, string) (*service.CreateWorkspaceResult, error) {
					called = true
					return nil, nil
				}

				w := do(http.MethodPost, "/api/v1/workspace", body)

				Expect(w.Code).To(Equal(http.StatusBadRequest))
				Expect(called).To(BeFalse())
			},
			Entry("malformed json", `{`),
			Entry("missing name", `{}`),
			Entry("empty name", `{"name":""}`),
			Entry("whitespace name", `{"name":"   "}`),
		)

		It("returns 403 with the provisioning message", func() {
			svc.createFn = func(context.Context, service.Caller, string) (*service.CreateWorkspaceResult, error) {
				return nil, &service.ProvisioningError{
					Step:    service.StepAssignOwner,
					Message: "Failed to add user to organization: role not found",
				}
			}

			w := do(http.MethodPost, "/api/v1/workspace", `{"name":"Test Co"}`)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(decode(w)).To(Equal(map[string]any{
				"error": "Failed to add user to organization: role not found",
				"code":  "FORBIDDEN",
			}))
		})
	})

	Describe("Switch", func() {
		It("switches without requiring a current workspace", func() {
			signedInAs(auth, user, nil)

			w := do(http.MethodPost, "/api/v1/workspace/switch", `{"orgCode":"def"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["currentWorkspace"]).To(Equal(map[string]any{"orgCode": "def"}))
		})

		It("returns 403 when the switch is refused", func() {
			svc.switchFn = func(context.Context, service.Caller, string) (*model.CurrentWorkspace, error) {
				return nil, service.ErrWorkspaceSwitch
			}

			w := do(http.MethodPost, "/api/v1/workspace/switch", `{"orgCode":"def"}`)

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("returns 400 without an org code", func() {
			w := do(http.MethodPost, "/api/v1/workspace/switch", `{}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
