package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"basegraph.app/workspaces/core/db"
	"basegraph.app/workspaces/internal/model"
)

const userColumns = `id, workos_id, name, email, avatar_url, created_at, updated_at`

type userStore struct {
	q db.Querier
}

func newUserStore(q db.Querier) UserStore {
	return &userStore{q: q}
}

func (s *userStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *userStore) GetByWorkOSID(ctx context.Context, workosID string) (*model.User, error) {
	row := s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE workos_id = $1`, workosID)
	return scanUser(row)
}

// UpsertByWorkOSID inserts the user or refreshes the profile of the existing
// row. The stored ID wins over user.ID on conflict and is written back.
func (s *userStore) UpsertByWorkOSID(ctx context.Context, user *model.User) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO users (id, workos_id, name, email, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (workos_id) DO UPDATE
		SET name = EXCLUDED.name,
		    email = EXCLUDED.email,
		    avatar_url = EXCLUDED.avatar_url,
		    updated_at = now()
		RETURNING `+userColumns,
		user.ID, user.WorkOSID, user.Name, user.Email, user.AvatarURL,
	)
	saved, err := scanUser(row)
	if err != nil {
		return err
	}
	*user = *saved
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.WorkOSID, &u.Name, &u.Email, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
