package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/api/apitest"
)

const (
	email    = "alice@example.com"
	password = "secret"
)

func newSession(t *testing.T, token string) (*Session, *apitest.Backend, *apitest.TokenStore) {
	t.Helper()
	backend := apitest.NewBackend(t)
	backend.AddUser(email, password, "Alice")
	tokens := apitest.NewTokenStore(token)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := api.NewClient(backend.URL(), nil, tokens, log)
	return New(api.NewAuthService(client), log), backend, tokens
}

func TestInitialStateIsLoading(t *testing.T) {
	s, _, _ := newSession(t, "")
	st := s.Snapshot()
	if !st.Loading || st.IsAuthenticated {
		t.Errorf("initial state = %+v, want loading and anonymous", st)
	}
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name        string
		token       string
		wantAuth    bool
		wantToken   string
		wantRequest bool
	}{
		{
			name:        "no token is anonymous without a request",
			token:       "",
			wantAuth:    false,
			wantToken:   "",
			wantRequest: false,
		},
		{
			name:        "valid token loads the user",
			token:       apitest.TokenFor(email),
			wantAuth:    true,
			wantToken:   apitest.TokenFor(email),
			wantRequest: true,
		},
		{
			name:        "rejected token is cleared",
			token:       "stale",
			wantAuth:    false,
			wantToken:   "",
			wantRequest: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, backend, tokens := newSession(t, test.token)

			st := s.Restore(context.Background())

			if st.Loading {
				t.Error("Loading should be false after Restore")
			}
			if st.IsAuthenticated != test.wantAuth {
				t.Errorf("IsAuthenticated = %v, want %v", st.IsAuthenticated, test.wantAuth)
			}
			if test.wantAuth && (st.User == nil || st.User.Email != email) {
				t.Errorf("User = %+v", st.User)
			}
			if got := tokens.Token(); got != test.wantToken {
				t.Errorf("token = %q, want %q", got, test.wantToken)
			}
			if got := len(backend.Requests()) > 0; got != test.wantRequest {
				t.Errorf("made request = %v, want %v", got, test.wantRequest)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	s, _, tokens := newSession(t, "")
	s.Restore(context.Background())

	if err := s.Login(context.Background(), email, password); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	st := s.Snapshot()
	if !st.IsAuthenticated || st.Loading || st.Error != "" || st.User == nil {
		t.Errorf("state = %+v, want authenticated", st)
	}
	if tokens.Token() != apitest.TokenFor(email) {
		t.Errorf("token = %q", tokens.Token())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	s, backend, tokens := newSession(t, "")
	s.Restore(context.Background())
	backend.Fail(http.MethodPost, "/api/auth/login", http.StatusUnauthorized, "Incorrect username or password")

	if err := s.Login(context.Background(), email, "wrong"); err == nil {
		t.Fatal("Login() should fail")
	}
	st := s.Snapshot()
	if st.IsAuthenticated || st.Loading {
		t.Errorf("state = %+v, want anonymous and settled", st)
	}
	if st.Error != ErrInvalidCredentials {
		t.Errorf("Error = %q, want fixed message", st.Error)
	}
	if tokens.Token() != "" {
		t.Error("no token should be stored")
	}
}

func TestLoginFailureKeepsAuthenticatedSession(t *testing.T) {
	s, _, tokens := newSession(t, apitest.TokenFor(email))
	s.Restore(context.Background())

	if err := s.Login(context.Background(), "nobody@example.com", "x"); err == nil {
		t.Fatal("Login() should fail")
	}
	st := s.Snapshot()
	if !st.IsAuthenticated || st.User == nil || st.User.Email != email {
		t.Errorf("state = %+v, want still authenticated", st)
	}
	if tokens.Token() != apitest.TokenFor(email) {
		t.Errorf("token = %q, want previous token kept", tokens.Token())
	}
}

func TestLoginUserFetchFailureRollsBackToken(t *testing.T) {
	s, backend, tokens := newSession(t, "")
	s.Restore(context.Background())
	backend.Fail(http.MethodGet, "/api/users/me", http.StatusInternalServerError, "boom")

	if err := s.Login(context.Background(), email, password); err == nil {
		t.Fatal("Login() should fail")
	}
	if tokens.Token() != "" {
		t.Errorf("token = %q, want cleared", tokens.Token())
	}
	if s.Snapshot().Error != ErrInvalidCredentials {
		t.Errorf("Error = %q", s.Snapshot().Error)
	}
}

func TestRegister(t *testing.T) {
	s, backend, tokens := newSession(t, "")
	s.Restore(context.Background())

	if err := s.Register(context.Background(), "new@example.com", "pw", "New"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if st := s.Snapshot(); st.IsAuthenticated || st.Error != "" {
		t.Errorf("state = %+v, want unchanged", st)
	}
	if tokens.Token() != "" {
		t.Error("Register() must not store a token")
	}

	err := s.Register(context.Background(), email, "pw", "Again")
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Register() error = %v, want *api.Error", err)
	}
	if got := s.Snapshot().Error; got != "Email already registered" {
		t.Errorf("Error = %q, want backend detail", got)
	}

	backend.Fail(http.MethodPost, "/api/auth/register", http.StatusInternalServerError, "")
	s.Register(context.Background(), "other@example.com", "pw", "Other")
	if got := s.Snapshot().Error; got != ErrRegistrationFailed {
		t.Errorf("Error = %q, want %q", got, ErrRegistrationFailed)
	}
}

func TestLogoutIsLocal(t *testing.T) {
	s, backend, tokens := newSession(t, apitest.TokenFor(email))
	s.Restore(context.Background())
	before := len(backend.Requests())

	s.Logout()

	st := s.Snapshot()
	if st.IsAuthenticated || st.User != nil || st.Loading {
		t.Errorf("state = %+v, want anonymous", st)
	}
	if tokens.Token() != "" {
		t.Error("token should be cleared")
	}
	if len(backend.Requests()) != before {
		t.Error("Logout() must not call the backend")
	}
}
