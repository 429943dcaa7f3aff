package apitest

import (
	"errors"
	"sync"
)

// TokenStore is an in-memory api.TokenStore with injectable write failures
type TokenStore struct {
	mu       sync.Mutex
	token    string
	SetErr   error
	ClearErr error
}

func NewTokenStore(token string) *TokenStore {
	return &TokenStore{token: token}
}

func (s *TokenStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *TokenStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	if token == "" {
		return errors.New("empty token")
	}
	s.token = token
	return nil
}

func (s *TokenStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.token = ""
	return nil
}
