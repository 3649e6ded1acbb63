package identity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/workos/workos-go/v6/pkg/organizations"
	"github.com/workos/workos-go/v6/pkg/usermanagement"

	"basegraph.app/workspaces/core/config"
	"basegraph.app/workspaces/internal/model"
)

const membershipPageSize = 100

// WorkOSClient implements every identity interface on top of the WorkOS
// organizations and user management APIs.
type WorkOSClient struct {
	cfg config.WorkOSConfig
}

func NewWorkOSClient(cfg config.WorkOSConfig) *WorkOSClient {
	organizations.SetAPIKey(cfg.APIKey)
	usermanagement.SetAPIKey(cfg.APIKey)
	return &WorkOSClient{cfg: cfg}
}

func (c *WorkOSClient) AuthorizationURL(state string) (string, error) {
	url, err := usermanagement.GetAuthorizationURL(usermanagement.GetAuthorizationURLOpts{
		ClientID:    c.cfg.ClientID,
		RedirectURI: c.cfg.RedirectURI,
		State:       state,
		Provider:    "authkit",
	})
	if err != nil {
		return "", fmt.Errorf("generating authorization URL: %w", err)
	}
	return url.String(), nil
}

func (c *WorkOSClient) ExchangeCode(ctx context.Context, code string) (*AuthResult, error) {
	resp, err := usermanagement.AuthenticateWithCode(ctx, usermanagement.AuthenticateWithCodeOpts{
		ClientID: c.cfg.ClientID,
		Code:     code,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to authenticate with code", "error", err)
		return nil, ErrInvalidCode
	}

	var org *string
	if resp.OrganizationID != "" {
		org = &resp.OrganizationID
	}

	return &AuthResult{
		Profile: Profile{
			ID:        resp.User.ID,
			Email:     resp.User.Email,
			FirstName: resp.User.FirstName,
			LastName:  resp.User.LastName,
			AvatarURL: resp.User.ProfilePictureURL,
		},
		Tokens: *tokensFrom(resp.AccessToken, resp.RefreshToken, org),
	}, nil
}

func (c *WorkOSClient) RefreshTokens(ctx context.Context, refreshToken string, orgCode *string) (*Tokens, error) {
	opts := usermanagement.AuthenticateWithRefreshTokenOpts{
		ClientID:     c.cfg.ClientID,
		RefreshToken: refreshToken,
	}
	if orgCode != nil {
		opts.OrganizationID = *orgCode
	}

	resp, err := usermanagement.AuthenticateWithRefreshToken(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("refreshing tokens: %w", err)
	}

	return tokensFrom(resp.AccessToken, resp.RefreshToken, orgCode), nil
}

// GetUserOrganizations returns nil when the user has no provider identity.
func (c *WorkOSClient) GetUserOrganizations(ctx context.Context, user *model.User) (*UserOrganizations, error) {
	if user == nil || user.WorkOSID == "" {
		return nil, nil
	}

	codes, err := c.listMemberships(ctx, usermanagement.ListOrganizationMembershipsOpts{
		UserID: user.WorkOSID,
	})
	if err != nil {
		return nil, err
	}

	result := &UserOrganizations{Orgs: make([]Organization, 0, len(codes))}
	for _, code := range codes {
		org, err := organizations.GetOrganization(ctx, organizations.GetOrganizationOpts{
			Organization: code,
		})
		if err != nil {
			return nil, fmt.Errorf("getting organization %s: %w", code, err)
		}

		entry := Organization{Code: org.ID}
		if org.Name != "" {
			name := org.Name
			entry.Name = &name
		}
		result.Orgs = append(result.Orgs, entry)
	}

	return result, nil
}

func (c *WorkOSClient) CreateOrganization(ctx context.Context, name string) (*Organization, error) {
	org, err := organizations.CreateOrganization(ctx, organizations.CreateOrganizationOpts{
		Name: name,
	})
	if err != nil {
		return nil, err
	}

	created := &Organization{Code: org.ID}
	if org.Name != "" {
		n := org.Name
		created.Name = &n
	}
	return created, nil
}

// AddOrganizationUsers creates one membership per user. Memberships created
// before a failure are not removed.
func (c *WorkOSClient) AddOrganizationUsers(ctx context.Context, orgCode string, users []OrganizationUser) error {
	for _, u := range users {
		opts := usermanagement.CreateOrganizationMembershipOpts{
			UserID:         u.ID,
			OrganizationID: orgCode,
		}
		if len(u.Roles) > 0 {
			opts.RoleSlug = u.Roles[0]
		}

		if _, err := usermanagement.CreateOrganizationMembership(ctx, opts); err != nil {
			return err
		}
	}
	return nil
}

func (c *WorkOSClient) CountOrganizationMembers(ctx context.Context, orgCode string) (int, error) {
	codes, err := c.listMemberships(ctx, usermanagement.ListOrganizationMembershipsOpts{
		OrganizationID: orgCode,
	})
	if err != nil {
		return 0, err
	}
	return len(codes), nil
}

func (c *WorkOSClient) DeleteOrganization(ctx context.Context, orgCode string) error {
	if err := organizations.DeleteOrganization(ctx, organizations.DeleteOrganizationOpts{
		Organization: orgCode,
	}); err != nil {
		return fmt.Errorf("deleting organization: %w", err)
	}
	return nil
}

// listMemberships pages through memberships matching opts and returns their
// organization IDs in provider order.
func (c *WorkOSClient) listMemberships(ctx context.Context, opts usermanagement.ListOrganizationMembershipsOpts) ([]string, error) {
	opts.Limit = membershipPageSize

	var codes []string
	for {
		page, err := usermanagement.ListOrganizationMemberships(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("listing organization memberships: %w", err)
		}
		for _, m := range page.Data {
			codes = append(codes, m.OrganizationID)
		}
		if page.ListMetadata.After == "" {
			return codes, nil
		}
		opts.After = page.ListMetadata.After
	}
}
