package model

import (
	"encoding/json"
	"time"
)

// Account is a connected creator identity. Credentials holds the raw OAuth
// token JSON issued at connect time; an account without credentials is
// enumerated but skipped by the sync engine.
type Account struct {
	ID          int64           `json:"id"`
	Email       string          `json:"email"`
	Credentials json.RawMessage `json:"-"`
	ChannelID   *string         `json:"channel_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (a *Account) Connected() bool {
	return len(a.Credentials) > 0
}

type Session struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
