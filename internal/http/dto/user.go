package dto

import (
	"basegraph.app/workspaces/internal/model"
)

type UserResponse struct {
	ID        int64  `json:"id,string"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

func ToUserResponse(u *model.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarOrDefault(),
	}
}

type MeResponse struct {
	User             *UserResponse           `json:"user"`
	CurrentWorkspace *model.CurrentWorkspace `json:"currentWorkspace"`
}
