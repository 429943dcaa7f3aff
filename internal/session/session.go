// Package session holds the authentication state shared by every screen.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/models"
)

// User-facing messages. Login never shows backend detail.
const (
	ErrInvalidCredentials = "Invalid email or password"
	ErrRegistrationFailed = "Registration failed"
)

// State is a snapshot of the authentication state
type State struct {
	User            *models.User
	IsAuthenticated bool
	Loading         bool
	Error           string
}

// Session owns the authentication state. It starts loading and anonymous;
// only Restore, Login, Register and Logout change it. Safe for concurrent use.
type Session struct {
	auth *api.AuthService
	log  *slog.Logger

	mu    sync.RWMutex
	state State
}

func New(auth *api.AuthService, log *slog.Logger) *Session {
	return &Session{
		auth:  auth,
		log:   log,
		state: State{Loading: true},
	}
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (s *Session) update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// Restore checks a stored token once at startup. Without a token the session
// becomes anonymous with no request. A token the backend rejects is cleared.
func (s *Session) Restore(ctx context.Context) State {
	if !s.auth.IsAuthenticated() {
		s.update(func(st *State) { st.Loading = false })
		return s.Snapshot()
	}

	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "restoring session", "error", err)
		if err := s.auth.Logout(); err != nil {
			s.log.ErrorContext(ctx, "clearing stored token", "error", err)
		}
		s.update(func(st *State) {
			*st = State{}
		})
		return s.Snapshot()
	}

	s.update(func(st *State) {
		*st = State{User: user, IsAuthenticated: true}
	})
	return s.Snapshot()
}

// Login authenticates and loads the user. On failure the previous state is
// kept, so an authenticated session is never demoted, and the stored token is
// put back to what it was.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.update(func(st *State) {
		st.Loading = true
		st.Error = ""
	})

	previous := s.auth.Token()
	_, err := s.auth.Login(ctx, email, password)
	var user *models.User
	if err == nil {
		user, err = s.auth.CurrentUser(ctx)
		if err != nil {
			if rerr := s.auth.RestoreToken(previous); rerr != nil {
				s.log.ErrorContext(ctx, "restoring previous token", "error", rerr)
			}
		}
	}
	if err != nil {
		s.log.ErrorContext(ctx, "login failed", "error", err)
		s.update(func(st *State) {
			st.Loading = false
			st.Error = ErrInvalidCredentials
		})
		return err
	}

	s.update(func(st *State) {
		*st = State{User: user, IsAuthenticated: true}
	})
	return nil
}

// Register creates an account without logging in. The error is returned so
// the caller decides where to go next.
func (s *Session) Register(ctx context.Context, email, password, fullName string) error {
	s.update(func(st *State) { st.Error = "" })

	if _, err := s.auth.Register(ctx, email, password, fullName); err != nil {
		s.log.ErrorContext(ctx, "registration failed", "error", err)
		msg := api.Detail(err)
		if msg == "" {
			msg = ErrRegistrationFailed
		}
		s.update(func(st *State) { st.Error = msg })
		return err
	}
	return nil
}

// Logout clears the stored token and resets to anonymous. No request is made.
func (s *Session) Logout() {
	if err := s.auth.Logout(); err != nil {
		s.log.Error("clearing stored token", "error", err)
	}
	s.update(func(st *State) {
		*st = State{}
	})
}

// ClearError drops a displayed error, e.g. when switching between login and register
func (s *Session) ClearError() {
	s.update(func(st *State) { st.Error = "" })
}

// TokenExpiry reports when the stored token expires, if it says so
func (s *Session) TokenExpiry() (time.Time, bool) {
	return s.auth.TokenExpiry()
}
