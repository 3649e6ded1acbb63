package service

import "basegraph.app/workspaces/internal/model"

// Caller is the authenticated principal of a request. Workspace is nil until
// the session has been scoped to an organization.
type Caller struct {
	User      *model.User
	Session   *model.Session
	Workspace *model.CurrentWorkspace
}
