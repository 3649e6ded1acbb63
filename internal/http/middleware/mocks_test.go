package middleware_test

import (
	"context"

	"basegraph.app/workspaces/internal/model"
	"basegraph.app/workspaces/internal/ratelimit"
	"basegraph.app/workspaces/internal/service"
)

type mockAuthService struct {
	validateFn func(ctx context.Context, sessionID int64) (*model.User, *model.Session, error)
}

func (m *mockAuthService) GetAuthorizationURL(string) (string, error) { return "", nil }

func (m *mockAuthService) HandleCallback(context.Context, string) (*service.CallbackResult, error) {
	return nil, nil
}

func (m *mockAuthService) ValidateSession(ctx context.Context, sessionID int64) (*model.User, *model.Session, error) {
	if m.validateFn != nil {
		return m.validateFn(ctx, sessionID)
	}
	return nil, nil, service.ErrSessionExpired
}

func (m *mockAuthService) Logout(context.Context, int64) error { return nil }

type allowCall struct {
	policy  ratelimit.Policy
	subject string
}

type mockLimiter struct {
	decision ratelimit.Decision
	err      error
	calls    []allowCall
}

func (m *mockLimiter) Allow(_ context.Context, policy ratelimit.Policy, subject string) (ratelimit.Decision, error) {
	m.calls = append(m.calls, allowCall{policy: policy, subject: subject})
	return m.decision, m.err
}
