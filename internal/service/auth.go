package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"basegraph.app/workspaces/common/id"
	"basegraph.app/workspaces/internal/identity"
	"basegraph.app/workspaces/internal/model"
	"basegraph.app/workspaces/internal/store"
)

const SessionTTL = 7 * 24 * time.Hour

type CallbackResult struct {
	User    *model.User
	Session *model.Session
}

type AuthService interface {
	GetAuthorizationURL(state string) (string, error)
	HandleCallback(ctx context.Context, code string) (*CallbackResult, error)
	ValidateSession(ctx context.Context, sessionID int64) (*model.User, *model.Session, error)
	Logout(ctx context.Context, sessionID int64) error
}

type authService struct {
	auth         identity.Authenticator
	txRunner     TxRunner
	userStore    store.UserStore
	sessionStore store.SessionStore
	now          func() time.Time
}

func NewAuthService(
	auth identity.Authenticator,
	txRunner TxRunner,
	userStore store.UserStore,
	sessionStore store.SessionStore,
) AuthService {
	return &authService{
		auth:         auth,
		txRunner:     txRunner,
		userStore:    userStore,
		sessionStore: sessionStore,
		now:          time.Now,
	}
}

func (s *authService) GetAuthorizationURL(state string) (string, error) {
	return s.auth.AuthorizationURL(state)
}

// HandleCallback exchanges the authorization code and stores the user and a
// new session in one transaction.
func (s *authService) HandleCallback(ctx context.Context, code string) (*CallbackResult, error) {
	authResult, err := s.auth.ExchangeCode(ctx, code)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCode) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("exchanging code: %w", err)
	}

	profile := authResult.Profile

	var avatarURL *string
	if profile.AvatarURL != "" {
		avatarURL = &profile.AvatarURL
	}

	user := &model.User{
		ID:        id.New(),
		WorkOSID:  profile.ID,
		Name:      profile.DisplayName(),
		Email:     profile.Email,
		AvatarURL: avatarURL,
	}

	session := &model.Session{
		ID:              id.New(),
		WorkOSSessionID: authResult.Tokens.SessionID,
		OrganizationID:  authResult.Tokens.OrganizationID,
		AccessToken:     authResult.Tokens.AccessToken,
		RefreshToken:    authResult.Tokens.RefreshToken,
		ExpiresAt:       s.now().Add(SessionTTL),
	}

	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if err := stores.Users().UpsertByWorkOSID(ctx, user); err != nil {
			slog.ErrorContext(ctx, "failed to upsert user",
				"error", err,
				"email", user.Email,
				"workos_id", profile.ID,
			)
			return fmt.Errorf("upserting user: %w", err)
		}

		session.UserID = user.ID
		if err := stores.Sessions().Create(ctx, session); err != nil {
			slog.ErrorContext(ctx, "failed to create session",
				"error", err,
				"user_id", user.ID,
			)
			return fmt.Errorf("creating session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user authenticated",
		"user_id", user.ID,
		"session_id", session.ID,
		"has_organization", session.OrganizationID != nil,
	)

	return &CallbackResult{User: user, Session: session}, nil
}

func (s *authService) ValidateSession(ctx context.Context, sessionID int64) (*model.User, *model.Session, error) {
	session, err := s.sessionStore.GetValid(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrSessionExpired
		}
		return nil, nil, fmt.Errorf("getting session: %w", err)
	}

	user, err := s.userStore.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("getting user: %w", err)
	}

	return user, session, nil
}

func (s *authService) Logout(ctx context.Context, sessionID int64) error {
	if err := s.sessionStore.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
