package model

import (
	"net/url"
	"time"
)

// DefaultAvatarBaseURL serves a generated avatar for users without a picture.
const DefaultAvatarBaseURL = "https://avatar.vercel.sh/"

type User struct {
	ID        int64     `json:"id,string"`
	WorkOSID  string    `json:"-"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AvatarOrDefault returns the provider picture, or a generated avatar keyed by
// email when there is none.
func (u *User) AvatarOrDefault() string {
	if u.AvatarURL != nil {
		return *u.AvatarURL
	}
	return DefaultAvatarBaseURL + url.PathEscape(u.Email)
}
