package db

import (
	"log/slog"
)

// tokenKey is the settings key holding the bearer token
const tokenKey = "token"

// TokenStore persists the bearer token in the settings table. It is the only
// durable client state.
type TokenStore struct {
	db  *DB
	log *slog.Logger
}

func NewTokenStore(database *DB, log *slog.Logger) *TokenStore {
	return &TokenStore{db: database, log: log}
}

// Token returns the stored token, or "" when none is stored or storage fails
func (s *TokenStore) Token() string {
	token, err := s.db.GetSetting(tokenKey)
	if err != nil {
		s.log.Error("reading stored token", "error", err)
		return ""
	}
	return token
}

// SetToken replaces the stored token
func (s *TokenStore) SetToken(token string) error {
	return s.db.SetSetting(tokenKey, token)
}

// ClearToken removes the stored token
func (s *TokenStore) ClearToken() error {
	return s.db.DeleteSetting(tokenKey)
}
