package service

import (
	"basegraph.app/workspaces/internal/identity"
	"basegraph.app/workspaces/internal/store"
)

type ServicesConfig struct {
	Stores        *store.Stores
	TxRunner      TxRunner
	Organizations identity.OrganizationClient
	Tokens        identity.SessionTokens
	Authenticator identity.Authenticator
	Orphans       OrphanQueue // optional
}

type Services struct {
	cfg ServicesConfig
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{cfg: cfg}
}

func (s *Services) Auth() AuthService {
	return NewAuthService(
		s.cfg.Authenticator,
		s.cfg.TxRunner,
		s.cfg.Stores.Users(),
		s.cfg.Stores.Sessions(),
	)
}

func (s *Services) Workspaces() WorkspaceService {
	return NewWorkspaceService(
		s.cfg.Organizations,
		s.cfg.Tokens,
		s.cfg.Stores.Sessions(),
		s.cfg.Orphans,
	)
}
