package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims are the provider specific claims carried by an access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	OrganizationID string `json:"org_id,omitempty"`
	SessionID      string `json:"sid,omitempty"`
	Role           string `json:"role,omitempty"`
}

// ParseAccessClaims decodes the claims of a token received directly from the
// provider over TLS. The signature is not checked; the token is never
// accepted from a client.
func ParseAccessClaims(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}
	return claims, nil
}

func tokensFrom(accessToken, refreshToken string, fallbackOrg *string) *Tokens {
	tokens := &Tokens{
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		OrganizationID: fallbackOrg,
	}

	claims, err := ParseAccessClaims(accessToken)
	if err != nil {
		return tokens
	}
	if claims.OrganizationID != "" {
		org := claims.OrganizationID
		tokens.OrganizationID = &org
	}
	if claims.SessionID != "" {
		sid := claims.SessionID
		tokens.SessionID = &sid
	}
	return tokens
}
