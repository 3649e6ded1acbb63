package store

import "basegraph.app/workspaces/core/db"

type Stores struct {
	q db.Querier
}

func NewStores(q db.Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Users() UserStore {
	return newUserStore(s.q)
}

func (s *Stores) Sessions() SessionStore {
	return newSessionStore(s.q)
}
