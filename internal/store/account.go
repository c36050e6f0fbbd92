package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"commentflow.app/engine/internal/model"
)

type accountStore struct {
	q Querier
}

const accountColumns = `id, email, google_credentials, channel_id, created_at, updated_at`

func (s *accountStore) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	row := s.q.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (s *accountStore) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	row := s.q.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

func (s *accountStore) Create(ctx context.Context, account *model.Account) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO accounts (id, email, google_credentials, channel_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		account.ID, account.Email, account.Credentials, account.ChannelID)
	if err := row.Scan(&account.CreatedAt, &account.UpdatedAt); err != nil {
		return fmt.Errorf("creating account: %w", err)
	}
	return nil
}

func (s *accountStore) UpdateCredentials(ctx context.Context, id int64, credentials json.RawMessage) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE accounts SET google_credentials = $2, updated_at = now() WHERE id = $1`,
		id, credentials)
	if err != nil {
		return fmt.Errorf("updating account credentials: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *accountStore) UpdateChannelID(ctx context.Context, id int64, channelID string) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE accounts SET channel_id = $2, updated_at = now() WHERE id = $1`,
		id, channelID)
	if err != nil {
		return fmt.Errorf("updating account channel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *accountStore) List(ctx context.Context) ([]model.Account, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Email, &a.Credentials, &a.ChannelID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
