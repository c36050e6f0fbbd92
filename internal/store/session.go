package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"commentflow.app/engine/internal/model"
)

type sessionStore struct {
	q Querier
}

func (s *sessionStore) GetValid(ctx context.Context, id int64) (*model.Session, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, account_id, expires_at, created_at
		FROM sessions
		WHERE id = $1 AND expires_at > now()`, id)

	var session model.Session
	err := row.Scan(&session.ID, &session.AccountID, &session.ExpiresAt, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (s *sessionStore) Create(ctx context.Context, session *model.Session) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO sessions (id, account_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		session.ID, session.AccountID, session.ExpiresAt)
	if err := row.Scan(&session.CreatedAt); err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

func (s *sessionStore) Delete(ctx context.Context, id int64) error {
	_, err := s.q.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (s *sessionStore) DeleteExpired(ctx context.Context) error {
	_, err := s.q.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return fmt.Errorf("deleting expired sessions: %w", err)
	}
	return nil
}
