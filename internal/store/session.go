package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"basegraph.app/workspaces/core/db"
	"basegraph.app/workspaces/internal/model"
)

const sessionColumns = `id, user_id, workos_session_id, organization_id, access_token, refresh_token, expires_at, created_at, updated_at`

type sessionStore struct {
	q db.Querier
}

func newSessionStore(q db.Querier) SessionStore {
	return &sessionStore{q: q}
}

func (s *sessionStore) GetValid(ctx context.Context, id int64) (*model.Session, error) {
	row := s.q.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1 AND expires_at > now()`, id)
	return scanSession(row)
}

func (s *sessionStore) Create(ctx context.Context, session *model.Session) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO sessions (id, user_id, workos_session_id, organization_id, access_token, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+sessionColumns,
		session.ID, session.UserID, session.WorkOSSessionID, session.OrganizationID,
		session.AccessToken, session.RefreshToken, session.ExpiresAt,
	)
	saved, err := scanSession(row)
	if err != nil {
		return err
	}
	*session = *saved
	return nil
}

func (s *sessionStore) UpdateTokens(ctx context.Context, id int64, tokens model.SessionTokens) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE sessions
		SET access_token = $2,
		    refresh_token = $3,
		    organization_id = $4,
		    workos_session_id = COALESCE($5, workos_session_id),
		    updated_at = now()
		WHERE id = $1`,
		id, tokens.AccessToken, tokens.RefreshToken, tokens.OrganizationID, tokens.WorkOSSessionID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sessionStore) Delete(ctx context.Context, id int64) error {
	_, err := s.q.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (s *sessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.q.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var s model.Session
	err := row.Scan(
		&s.ID, &s.UserID, &s.WorkOSSessionID, &s.OrganizationID,
		&s.AccessToken, &s.RefreshToken, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
