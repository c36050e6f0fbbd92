package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"

	"commentflow.app/engine/common/id"
	"commentflow.app/engine/core/config"
	"commentflow.app/engine/internal/model"
	"commentflow.app/engine/internal/store"
)

var (
	ErrInvalidCode    = errors.New("invalid authorization code")
	ErrSessionExpired = errors.New("session expired")
	ErrNotConnected   = errors.New("account has no connected channel")
)

var oauthScopes = []string{
	"https://www.googleapis.com/auth/youtube.force-ssl",
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

type AuthService interface {
	AuthorizationURL(state string) string
	HandleCallback(ctx context.Context, code string) (*model.Account, *model.Session, error)
	ValidateSession(ctx context.Context, sessionID int64) (*model.Account, error)
	Logout(ctx context.Context, sessionID int64) error
}

type authService struct {
	accountStore store.AccountStore
	sessionStore store.SessionStore
	txRunner     TxRunner
	oauth        *oauth2.Config
	clientID     string
	sessionTTL   time.Duration
}

func NewAuthService(
	accountStore store.AccountStore,
	sessionStore store.SessionStore,
	txRunner TxRunner,
	cfg config.GoogleConfig,
	sessionTTL time.Duration,
) AuthService {
	return &authService{
		accountStore: accountStore,
		sessionStore: sessionStore,
		txRunner:     txRunner,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       oauthScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://accounts.google.com/o/oauth2/auth",
				TokenURL: "https://oauth2.googleapis.com/token",
			},
		},
		clientID:   cfg.ClientID,
		sessionTTL: sessionTTL,
	}
}

func (s *authService) AuthorizationURL(state string) string {
	return s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// HandleCallback exchanges the authorization code, verifies the identity
// token, and upserts the account keyed by verified email. The full OAuth
// token is persisted as the account's platform credentials.
func (s *authService) HandleCallback(ctx context.Context, code string) (*model.Account, *model.Session, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		slog.ErrorContext(ctx, "authorization code exchange failed", "error", err)
		return nil, nil, ErrInvalidCode
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, nil, fmt.Errorf("token response carries no id_token")
	}

	payload, err := idtoken.Validate(ctx, rawIDToken, s.clientID)
	if err != nil {
		return nil, nil, fmt.Errorf("verifying id token: %w", err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, nil, fmt.Errorf("id token carries no email claim")
	}

	credentials, err := json.Marshal(token)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding credentials: %w", err)
	}

	// Account upsert and session creation commit together.
	var account *model.Account
	var session *model.Session
	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		account, err = upsertAccount(ctx, stores.Accounts(), email, credentials)
		if err != nil {
			return err
		}

		session = &model.Session{
			ID:        id.New(),
			AccountID: account.ID,
			ExpiresAt: time.Now().Add(s.sessionTTL),
		}
		if err := stores.Sessions().Create(ctx, session); err != nil {
			return fmt.Errorf("creating session: %w", err)
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to persist authenticated account", "error", err, "email", email)
		return nil, nil, err
	}

	slog.InfoContext(ctx, "account authenticated",
		"account_id", account.ID,
		"email", account.Email,
		"session_id", session.ID,
	)
	return account, session, nil
}

func upsertAccount(ctx context.Context, accounts store.AccountStore, email string, credentials json.RawMessage) (*model.Account, error) {
	account, err := accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := accounts.UpdateCredentials(ctx, account.ID, credentials); err != nil {
			return nil, fmt.Errorf("updating credentials: %w", err)
		}
		account.Credentials = credentials
		return account, nil
	case errors.Is(err, store.ErrNotFound):
		account = &model.Account{
			ID:          id.New(),
			Email:       email,
			Credentials: credentials,
		}
		if err := accounts.Create(ctx, account); err != nil {
			return nil, fmt.Errorf("creating account: %w", err)
		}
		return account, nil
	default:
		return nil, fmt.Errorf("loading account: %w", err)
	}
}

func (s *authService) ValidateSession(ctx context.Context, sessionID int64) (*model.Account, error) {
	session, err := s.sessionStore.GetValid(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}

	account, err := s.accountStore.GetByID(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("getting account: %w", err)
	}
	return account, nil
}

func (s *authService) Logout(ctx context.Context, sessionID int64) error {
	if err := s.sessionStore.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
