package services

import (
	"context"
	"errors"
	"sync"

	"shelfsync/internal/client/api"
	"shelfsync/internal/client/store"
	"shelfsync/internal/common"
	"shelfsync/internal/logging"
)

// Session tracks which account owns the local dataset. Login and Register
// bind the dataset to an account; Logout severs it and drops everything the
// server already has a copy of, keeping only unpushed local changes.
type Session struct {
	api   api.Client
	store *store.Store
	log   logging.Logger

	mu      sync.Mutex
	account string
}

func NewSession(apiClient api.Client, st *store.Store, log logging.Logger) *Session {
	return &Session{api: apiClient, store: st, log: log}
}

// Account returns the logged-in account name, or "" when logged out.
func (s *Session) Account() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

func (s *Session) IsLoggedIn() bool {
	return s.Account() != ""
}

// Login authenticates against the server. When the dataset was previously
// bound to a different account, its synced records are dropped first so the
// new account's data cannot mix with the old one's.
func (s *Session) Login(ctx context.Context, account, password string) error {
	if err := s.switchAccount(ctx, account); err != nil {
		return err
	}
	if err := s.api.Login(ctx, account, password); err != nil {
		return err
	}

	s.mu.Lock()
	s.account = account
	s.mu.Unlock()

	s.log.Info(ctx, "logged in", "account", account)
	return nil
}

// Register creates the account on the server and leaves the session
// logged in.
func (s *Session) Register(ctx context.Context, account, email, password string) error {
	if err := s.switchAccount(ctx, account); err != nil {
		return err
	}
	if err := s.api.Register(ctx, account, email, password); err != nil {
		return err
	}

	s.mu.Lock()
	s.account = account
	s.mu.Unlock()

	s.log.Info(ctx, "registered", "account", account)
	return nil
}

// Logout ends the server session and clears the account binding. The server
// logout is best effort: neither a dead network nor an already-expired
// server session may keep the user logged in locally.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	account := s.account
	s.mu.Unlock()
	if account == "" {
		return common.ErrNotLoggedIn
	}

	err := s.api.Logout(ctx)
	if err != nil && !errors.Is(err, api.ErrUnavailable) && !errors.Is(err, api.ErrUnauthorized) {
		return err
	}

	if err := s.store.ClearSynced(ctx); err != nil {
		return err
	}
	if err := s.store.SyncState.Clear(ctx, account); err != nil {
		return err
	}

	s.mu.Lock()
	s.account = ""
	s.mu.Unlock()

	s.log.Info(ctx, "logged out", "account", account)
	return nil
}

// switchAccount prepares the local dataset for a (possibly different)
// account: when the last watermark belongs to someone else, synced records
// and the old watermark are dropped.
func (s *Session) switchAccount(ctx context.Context, account string) error {
	s.mu.Lock()
	prev := s.account
	s.mu.Unlock()
	if prev == "" || prev == account {
		return nil
	}

	s.log.Info(ctx, "switching account, dropping synced records",
		"from", prev, "to", account)
	if err := s.store.ClearSynced(ctx); err != nil {
		return err
	}
	return s.store.SyncState.Clear(ctx, prev)
}
