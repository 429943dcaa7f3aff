package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/tgienger/taskdeck/internal/models"
)

// TokenResponse is the body returned by a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// AuthService wraps the authentication endpoints and the stored token
type AuthService struct {
	client *Client
}

func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

// Login posts form-encoded credentials and stores the returned access token
// before returning.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp TokenResponse
	if err := s.client.Do(ctx, http.MethodPost, "/api/auth/login", nil, form, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken != "" {
		if err := s.client.tokens.SetToken(resp.AccessToken); err != nil {
			return nil, fmt.Errorf("storing token: %w", err)
		}
	}
	return &resp, nil
}

// Register creates an account. It does not log in.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	body := registerRequest{Email: email, Password: password, FullName: fullName}
	var user models.User
	if err := s.client.Do(ctx, http.MethodPost, "/api/auth/register", nil, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser fetches the user the stored token belongs to
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.client.Do(ctx, http.MethodGet, "/api/users/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout forgets the stored token. No request is made.
func (s *AuthService) Logout() error {
	return s.client.tokens.ClearToken()
}

// IsAuthenticated reports whether a token is stored. No request is made.
func (s *AuthService) IsAuthenticated() bool {
	return s.client.tokens.Token() != ""
}

// Token returns the stored token
func (s *AuthService) Token() string {
	return s.client.tokens.Token()
}

// RestoreToken puts a previously stored token back, clearing storage for ""
func (s *AuthService) RestoreToken(token string) error {
	if token == "" {
		return s.client.tokens.ClearToken()
	}
	return s.client.tokens.SetToken(token)
}

// TokenExpiry reads the exp claim of the stored token without verifying it.
// ok is false when no token is stored or it is not a JWT with an expiry.
func (s *AuthService) TokenExpiry() (exp time.Time, ok bool) {
	return TokenExpiry(s.client.tokens.Token())
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
