package model

// Workspace is one organization the caller belongs to, shaped for the switcher.
type Workspace struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// CurrentWorkspace is the organization the caller's session is scoped to.
type CurrentWorkspace struct {
	OrgCode string `json:"orgCode"`
}

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)
