package handler_test

import (
	"context"

	"basegraph.app/workspaces/internal/model"
	"basegraph.app/workspaces/internal/service"
)

type mockWorkspaceService struct {
	listFn   func(ctx context.Context, caller service.Caller) (*service.ListWorkspacesResult, error)
	createFn func(ctx context.Context, caller service.Caller, name string) (*service.CreateWorkspaceResult, error)
	switchFn func(ctx context.Context, caller service.Caller, orgCode string) (*model.CurrentWorkspace, error)
}

func (m *mockWorkspaceService) List(ctx context.Context, caller service.Caller) (*service.ListWorkspacesResult, error) {
	if m.listFn != nil {
		return m.listFn(ctx, caller)
	}
	return &service.ListWorkspacesResult{User: caller.User, CurrentWorkspace: caller.Workspace}, nil
}

func (m *mockWorkspaceService) Create(ctx context.Context, caller service.Caller, name string) (*service.CreateWorkspaceResult, error) {
	if m.createFn != nil {
		return m.createFn(ctx, caller, name)
	}
	return &service.CreateWorkspaceResult{OrgCode: "org_new", WorkspaceName: name}, nil
}

func (m *mockWorkspaceService) Switch(ctx context.Context, caller service.Caller, orgCode string) (*model.CurrentWorkspace, error) {
	if m.switchFn != nil {
		return m.switchFn(ctx, caller, orgCode)
	}
	return &model.CurrentWorkspace{OrgCode: orgCode}, nil
}

type mockAuthService struct {
	urlFn      func(state string) (string, error)
	callbackFn func(ctx context.Context, code string) (*service.CallbackResult, error)
	validateFn func(ctx context.Context, sessionID int64) (*model.User, *model.Session, error)
	logoutFn   func(ctx context.Context, sessionID int64) error

	logoutCalls []int64
}

func (m *mockAuthService) GetAuthorizationURL(state string) (string, error) {
	if m.urlFn != nil {
		return m.urlFn(state)
	}
	return "https://auth.example.com/authorize?state=" + state, nil
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string) (*service.CallbackResult, error) {
	if m.callbackFn != nil {
		return m.callbackFn(ctx, code)
	}
	return nil, service.ErrInvalidCode
}

func (m *mockAuthService) ValidateSession(ctx context.Context, sessionID int64) (*model.User, *model.Session, error) {
	if m.validateFn != nil {
		return m.validateFn(ctx, sessionID)
	}
	return nil, nil, service.ErrSessionExpired
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID int64) error {
	m.logoutCalls = append(m.logoutCalls, sessionID)
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func strPtr(s string) *string { return &s }

// signedInAs makes every session ID resolve to user and a session scoped to orgCode.
func signedInAs(m *mockAuthService, user *model.User, orgCode *string) {
	m.validateFn = func(_ context.Context, sessionID int64) (*model.User, *model.Session, error) {
		return user, &model.Session{ID: sessionID, UserID: user.ID, OrganizationID: orgCode}, nil
	}
}
