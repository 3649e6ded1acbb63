package model

import "time"

// Session is a logged-in browser session. The WorkOS tokens are kept server
// side and rotated on every refresh.
type Session struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ExpiresAt       time.Time
	ID              int64
	UserID          int64
	WorkOSSessionID *string
	OrganizationID  *string // organization the tokens are scoped to
	AccessToken     string
	RefreshToken    string
}

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionTokens is the credential set written back after a token refresh.
type SessionTokens struct {
	AccessToken     string
	RefreshToken    string
	OrganizationID  *string
	WorkOSSessionID *string
}
