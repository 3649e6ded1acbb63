package dto

import (
	"basegraph.app/workspaces/common/palette"
	"basegraph.app/workspaces/internal/model"
	"basegraph.app/workspaces/internal/service"
)

type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

type CreateWorkspaceResponse struct {
	OrgCode       string `json:"orgCode"`
	WorkspaceName string `json:"workspaceName"`
}

type SwitchWorkspaceRequest struct {
	OrgCode string `json:"orgCode" binding:"required,max=255"`
}

type SwitchWorkspaceResponse struct {
	CurrentWorkspace *model.CurrentWorkspace `json:"currentWorkspace"`
}

type WorkspaceResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Color     string `json:"color"`
	IsCurrent bool   `json:"isCurrent"`
}

type ListWorkspacesResponse struct {
	Workspaces       []WorkspaceResponse     `json:"workspaces"`
	User             *UserResponse           `json:"user"`
	CurrentWorkspace *model.CurrentWorkspace `json:"currentWorkspace"`
}

func ToListWorkspacesResponse(r *service.ListWorkspacesResult) *ListWorkspacesResponse {
	current := ""
	if r.CurrentWorkspace != nil {
		current = r.CurrentWorkspace.OrgCode
	}

	workspaces := make([]WorkspaceResponse, 0, len(r.Workspaces))
	for _, ws := range r.Workspaces {
		workspaces = append(workspaces, WorkspaceResponse{
			ID:        ws.ID,
			Name:      ws.Name,
			Avatar:    ws.Avatar,
			Color:     palette.ColorFor(ws.ID),
			IsCurrent: current != "" && ws.ID == current,
		})
	}

	return &ListWorkspacesResponse{
		Workspaces:       workspaces,
		User:             ToUserResponse(r.User),
		CurrentWorkspace: r.CurrentWorkspace,
	}
}

func ToCreateWorkspaceResponse(r *service.CreateWorkspaceResult) *CreateWorkspaceResponse {
	return &CreateWorkspaceResponse{
		OrgCode:       r.OrgCode,
		WorkspaceName: r.WorkspaceName,
	}
}
