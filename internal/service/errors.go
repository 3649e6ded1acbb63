package service

import (
	"errors"

	"basegraph.app/workspaces/internal/identity"
)

var (
	ErrInvalidCode          = identity.ErrInvalidCode
	ErrUserNotFound         = errors.New("user not found")
	ErrSessionExpired       = errors.New("session expired")
	ErrNoWorkspace          = errors.New("no current workspace")
	ErrNoOrganizations      = errors.New("no organizations found")
	ErrInvalidWorkspaceName = errors.New("workspace name is required")
	ErrWorkspaceSwitch      = errors.New("failed to switch workspace")
	ErrProvisioning         = errors.New("workspace provisioning failed")
)

type ProvisioningStep string

const (
	StepCreateOrganization ProvisioningStep = "create_organization"
	StepAssignOwner        ProvisioningStep = "assign_owner"
	StepRefreshSession     ProvisioningStep = "refresh_session"
)

// ProvisioningError reports which step of workspace creation failed. Message
// is safe to return to the caller.
type ProvisioningError struct {
	Step    ProvisioningStep
	Message string
	Err     error
}

func (e *ProvisioningError) Error() string {
	return e.Message
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

func (e *ProvisioningError) Is(target error) bool {
	return target == ErrProvisioning
}

func provisioningFailure(step ProvisioningStep, prefix string, err error) *ProvisioningError {
	msg := prefix
	if err != nil {
		msg = prefix + ": " + err.Error()
	}
	return &ProvisioningError{Step: step, Message: msg, Err: err}
}
