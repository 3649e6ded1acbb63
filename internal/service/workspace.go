package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"basegraph.app/workspaces/common/logger"
	"basegraph.app/workspaces/internal/identity"
	"basegraph.app/workspaces/internal/model"
	"basegraph.app/workspaces/internal/queue"
	"basegraph.app/workspaces/internal/store"
)

const (
	DefaultWorkspaceName   = "My Workspace"
	DefaultWorkspaceAvatar = "M"

	orphanEnqueueTimeout = 5 * time.Second
)

var errNoTokens = errors.New("provider returned no tokens")

type ListWorkspacesResult struct {
	Workspaces       []model.Workspace
	User             *model.User
	CurrentWorkspace *model.CurrentWorkspace
}

type CreateWorkspaceResult struct {
	OrgCode       string
	WorkspaceName string
}

// OrphanQueue records organizations left behind by a failed provisioning run.
type OrphanQueue interface {
	Enqueue(ctx context.Context, msg queue.OrphanMessage) error
}

type WorkspaceService interface {
	List(ctx context.Context, caller Caller) (*ListWorkspacesResult, error)
	Create(ctx context.Context, caller Caller, name string) (*CreateWorkspaceResult, error)
	Switch(ctx context.Context, caller Caller, orgCode string) (*model.CurrentWorkspace, error)
}

type workspaceService struct {
	orgs         identity.OrganizationClient
	tokens       identity.SessionTokens
	sessionStore store.SessionStore
	orphans      OrphanQueue
}

// NewWorkspaceService builds the workspace service. orphans may be nil, in
// which case failed owner assignments are only logged.
func NewWorkspaceService(
	orgs identity.OrganizationClient,
	tokens identity.SessionTokens,
	sessionStore store.SessionStore,
	orphans OrphanQueue,
) WorkspaceService {
	return &workspaceService{
		orgs:         orgs,
		tokens:       tokens,
		sessionStore: sessionStore,
		orphans:      orphans,
	}
}

func (s *workspaceService) List(ctx context.Context, caller Caller) (*ListWorkspacesResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "workspaces.service.workspace",
	})

	orgs, err := s.tokens.GetUserOrganizations(ctx, caller.User)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list user organizations", "error", err)
		return nil, fmt.Errorf("listing user organizations: %w", err)
	}
	if orgs == nil {
		slog.WarnContext(ctx, "identity provider returned no organizations for user")
		return nil, ErrNoOrganizations
	}

	workspaces := make([]model.Workspace, 0, len(orgs.Orgs))
	for _, org := range orgs.Orgs {
		workspaces = append(workspaces, toWorkspace(org))
	}

	return &ListWorkspacesResult{
		Workspaces:       workspaces,
		User:             caller.User,
		CurrentWorkspace: caller.Workspace,
	}, nil
}

// Create provisions a new organization, makes the caller its admin and
// rescopes the caller's session to it. Steps run once, in order, and a
// failure never undoes earlier steps.
func (s *workspaceService) Create(ctx context.Context, caller Caller, name string) (*CreateWorkspaceResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "workspaces.service.workspace",
	})

	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidWorkspaceName
	}
	if caller.User == nil || caller.Session == nil {
		return nil, ErrSessionExpired
	}

	orgCode, err := s.createOrganization(ctx, name)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{OrgCode: &orgCode})

	if err := s.assignOwner(ctx, orgCode, caller.User); err != nil {
		return nil, err
	}

	if err := s.refreshSession(ctx, orgCode, caller.Session); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "workspace created", "workspace_name", name)

	return &CreateWorkspaceResult{
		OrgCode:       orgCode,
		WorkspaceName: name,
	}, nil
}

func (s *workspaceService) createOrganization(ctx context.Context, name string) (string, error) {
	sc := logger.StartSpan(ctx, "workspace.create_organization")
	defer sc.End()
	ctx = sc.Context()

	org, err := s.orgs.CreateOrganization(ctx, name)
	if err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "failed to create organization", "error", err, "step", StepCreateOrganization)
		return "", provisioningFailure(StepCreateOrganization, "Failed to create organization", err)
	}

	if org == nil || org.Code == "" {
		perr := &ProvisioningError{Step: StepCreateOrganization, Message: "Org code is not defined"}
		sc.RecordError(perr)
		slog.ErrorContext(ctx, "organization created without a code", "step", StepCreateOrganization)
		return "", perr
	}

	return org.Code, nil
}

func (s *workspaceService) assignOwner(ctx context.Context, orgCode string, user *model.User) error {
	sc := logger.StartSpan(ctx, "workspace.assign_owner")
	defer sc.End()
	ctx = sc.Context()

	owner := identity.OrganizationUser{
		ID:    user.WorkOSID,
		Roles: []string{string(model.RoleAdmin)},
	}

	err := s.orgs.AddOrganizationUsers(ctx, orgCode, []identity.OrganizationUser{owner})
	if err == nil {
		return nil
	}

	sc.RecordError(err)
	slog.ErrorContext(ctx, "failed to add owner to organization, organization left without members",
		"error", err,
		"step", StepAssignOwner)
	s.reportOrphan(ctx, orgCode, user, err)

	return provisioningFailure(StepAssignOwner, "Failed to add user to organization", err)
}

func (s *workspaceService) reportOrphan(ctx context.Context, orgCode string, user *model.User, cause error) {
	if s.orphans == nil {
		return
	}

	msg := queue.OrphanMessage{
		OrgCode:   orgCode,
		CreatedBy: user.WorkOSID,
		Reason:    queue.ReasonOwnerAssignmentFailed,
		LastError: logger.Truncate(cause.Error(), 500),
	}
	if traceID := logger.TraceID(ctx); traceID != "" {
		msg.TraceID = &traceID
	}

	// The request may already be cancelled; the orphan must still be recorded.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), orphanEnqueueTimeout)
	defer cancel()

	if err := s.orphans.Enqueue(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to enqueue orphaned organization", "error", err)
	}
}

func (s *workspaceService) refreshSession(ctx context.Context, orgCode string, session *model.Session) error {
	sc := logger.StartSpan(ctx, "workspace.refresh_session")
	defer sc.End()
	ctx = sc.Context()

	if err := s.rescope(ctx, orgCode, session); err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "failed to refresh session for new workspace",
			"error", err,
			"step", StepRefreshSession)
		return provisioningFailure(StepRefreshSession, "Failed to refresh session", err)
	}
	return nil
}

// Switch rescopes the caller's session to orgCode. The provider rejects the
// refresh when the caller is not a member.
func (s *workspaceService) Switch(ctx context.Context, caller Caller, orgCode string) (*model.CurrentWorkspace, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "workspaces.service.workspace",
		OrgCode:   &orgCode,
	})

	if orgCode == "" {
		return nil, ErrWorkspaceSwitch
	}
	if caller.Session == nil {
		return nil, ErrSessionExpired
	}
	if caller.Workspace != nil && caller.Workspace.OrgCode == orgCode {
		return caller.Workspace, nil
	}

	if err := s.rescope(ctx, orgCode, caller.Session); err != nil {
		var refreshErr *refreshError
		if errors.As(err, &refreshErr) {
			slog.WarnContext(ctx, "workspace switch rejected", "error", err)
			return nil, fmt.Errorf("%w: %w", ErrWorkspaceSwitch, err)
		}
		slog.ErrorContext(ctx, "failed to persist switched session", "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "workspace switched")
	return &model.CurrentWorkspace{OrgCode: orgCode}, nil
}

type refreshError struct {
	err error
}

func (e *refreshError) Error() string { return e.err.Error() }
func (e *refreshError) Unwrap() error { return e.err }

// rescope refreshes the session tokens scoped to orgCode and stores them.
func (s *workspaceService) rescope(ctx context.Context, orgCode string, session *model.Session) error {
	tokens, err := s.tokens.RefreshTokens(ctx, session.RefreshToken, &orgCode)
	if err != nil {
		return &refreshError{err: err}
	}
	if tokens == nil || tokens.AccessToken == "" {
		return &refreshError{err: errNoTokens}
	}

	org := tokens.OrganizationID
	if org == nil {
		org = &orgCode
	}

	if err := s.sessionStore.UpdateTokens(ctx, session.ID, model.SessionTokens{
		AccessToken:     tokens.AccessToken,
		RefreshToken:    tokens.RefreshToken,
		OrganizationID:  org,
		WorkOSSessionID: tokens.SessionID,
	}); err != nil {
		return fmt.Errorf("updating session tokens: %w", err)
	}
	return nil
}

func toWorkspace(org identity.Organization) model.Workspace {
	ws := model.Workspace{
		ID:     org.Code,
		Name:   DefaultWorkspaceName,
		Avatar: DefaultWorkspaceAvatar,
	}
	if org.Name != nil && *org.Name != "" {
		ws.Name = *org.Name
		r, _ := utf8.DecodeRuneInString(*org.Name)
		ws.Avatar = string(r)
	}
	return ws
}
