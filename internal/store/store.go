package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same store
// code runs inside and outside transactions.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Stores bundles the typed stores over one Querier.
type Stores struct {
	q Querier
}

func NewStores(q Querier) *Stores {
	return &Stores{q: q}
}

// FromPool is a convenience constructor for the common non-transactional case.
func FromPool(pool *pgxpool.Pool) *Stores {
	return NewStores(pool)
}

func (s *Stores) Comments() CommentStore {
	return &commentStore{q: s.q}
}

func (s *Stores) Accounts() AccountStore {
	return &accountStore{q: s.q}
}

func (s *Stores) Sessions() SessionStore {
	return &sessionStore{q: s.q}
}
