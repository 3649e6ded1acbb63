// Package identity talks to the hosted identity provider that owns users,
// organizations and memberships.
package identity

import (
	"context"
	"errors"

	"basegraph.app/workspaces/internal/model"
)

var ErrInvalidCode = errors.New("invalid authorization code")

type Organization struct {
	Code string
	Name *string
}

// UserOrganizations is the provider's view of a user's memberships. A nil
// *UserOrganizations means the provider has no organization record for the
// user at all, which is different from an empty list.
type UserOrganizations struct {
	Orgs []Organization
}

type OrganizationUser struct {
	ID    string
	Roles []string
}

type Tokens struct {
	AccessToken    string
	RefreshToken   string
	OrganizationID *string
	SessionID      *string
}

// Profile is the user record returned by a successful code exchange.
type Profile struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	AvatarURL string
}

type AuthResult struct {
	Profile Profile
	Tokens  Tokens
}

type OrganizationClient interface {
	CreateOrganization(ctx context.Context, name string) (*Organization, error)
	AddOrganizationUsers(ctx context.Context, orgCode string, users []OrganizationUser) error
	CountOrganizationMembers(ctx context.Context, orgCode string) (int, error)
	DeleteOrganization(ctx context.Context, orgCode string) error
}

type SessionTokens interface {
	// RefreshTokens exchanges refreshToken for a new pair. A non-nil orgCode
	// scopes the new access token to that organization.
	RefreshTokens(ctx context.Context, refreshToken string, orgCode *string) (*Tokens, error)
	GetUserOrganizations(ctx context.Context, user *model.User) (*UserOrganizations, error)
}

type Authenticator interface {
	AuthorizationURL(state string) (string, error)
	ExchangeCode(ctx context.Context, code string) (*AuthResult, error)
}

// DisplayName builds a human name from the profile, falling back to email.
func (p Profile) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	case p.LastName != "":
		return p.LastName
	}
	return p.Email
}
