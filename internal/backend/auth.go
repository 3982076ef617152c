package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinPasswordLength is the shortest password accepted locally.
const MinPasswordLength = 6

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an authenticated login.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Expired reports whether the access token is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || (!s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt))
}

// Claims are the access-token claims the client reads.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// DecodeAccessToken reads the claims without verifying the signature; the
// service verifies tokens, the client only needs the identity.
func DecodeAccessToken(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decoding access token: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("decoding access token: missing subject")
	}
	return claims, nil
}

// ValidateCredentials checks email and password locally. A non-nil
// confirm must match password.
func ValidateCredentials(email, password string, confirm *string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: email %q is not valid", ErrValidation, email)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	if confirm != nil && *confirm != password {
		return fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	return nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         User   `json:"user"`
}

// SignUp registers a user. Services that require email confirmation
// return no session; the result is then nil.
func (c *Client) SignUp(ctx context.Context, email, password, confirm string) (*Session, error) {
	if err := ValidateCredentials(email, password, &confirm); err != nil {
		return nil, err
	}
	if !c.Enabled() {
		return nil, nil
	}

	var resp tokenResponse
	body := map[string]string{"email": strings.TrimSpace(email), "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", nil, nil, body, &resp); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, nil
	}
	return c.storeSession(resp)
}

// SignIn exchanges email and password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if err := ValidateCredentials(email, password, nil); err != nil {
		return nil, err
	}
	if !c.Enabled() {
		return nil, nil
	}

	var resp tokenResponse
	body := map[string]string{"email": strings.TrimSpace(email), "password": password}
	query := url.Values{"grant_type": {"password"}}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token", query, nil, body, &resp); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return c.storeSession(resp)
}

// SignOut revokes the session server-side and forgets it locally.
func (c *Client) SignOut(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	if c.Session() == nil {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, nil, nil)
	c.SetSession(nil)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// Session returns the current session, or nil.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// SetSession installs a session restored from disk, or clears it.
func (c *Client) SetSession(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

// CurrentUser returns the signed-in user from the access-token claims.
func (c *Client) CurrentUser() (*User, error) {
	s := c.Session()
	if s == nil || s.Expired(c.now()) {
		return nil, ErrNotAuthenticated
	}
	claims, err := DecodeAccessToken(s.AccessToken)
	if err != nil {
		return nil, err
	}
	return &User{ID: claims.Subject, Email: claims.Email}, nil
}

func (c *Client) storeSession(resp tokenResponse) (*Session, error) {
	s := &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}
	claims, err := DecodeAccessToken(resp.AccessToken)
	if err != nil {
		return nil, err
	}
	if s.User.ID == "" {
		s.User = User{ID: claims.Subject, Email: claims.Email}
	}
	switch {
	case claims.ExpiresAt != nil:
		s.ExpiresAt = claims.ExpiresAt.Time
	case resp.ExpiresIn > 0:
		s.ExpiresAt = c.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	c.SetSession(s)
	return s, nil
}

func (c *Client) requireUser() (string, error) {
	u, err := c.CurrentUser()
	if err != nil {
		return "", err
	}
	return u.ID, nil
}
