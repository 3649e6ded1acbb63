package store

import (
	"context"
	"errors"

	"basegraph.app/workspaces/internal/model"
)

var ErrNotFound = errors.New("not found")

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByWorkOSID(ctx context.Context, workosID string) (*model.User, error)
	UpsertByWorkOSID(ctx context.Context, user *model.User) error
}

type SessionStore interface {
	GetValid(ctx context.Context, id int64) (*model.Session, error) // checks expiry
	Create(ctx context.Context, session *model.Session) error
	UpdateTokens(ctx context.Context, id int64, tokens model.SessionTokens) error
	Delete(ctx context.Context, id int64) error
	DeleteExpired(ctx context.Context) (int64, error)
}
