package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized covers missing, malformed and expired bearer tokens.
var ErrUnauthorized = errors.New("unauthorized")

type ctxKey string

const userIDKey ctxKey = "user_id"

// Auth verifies HS256 bearer tokens whose subject is the user id.
type Auth struct {
	secret []byte
}

func NewAuth(secret []byte) Auth {
	return Auth{secret: secret}
}

// IssueToken signs a token for userID valid for ttl.
func (a Auth) IssueToken(userID string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken returns the subject of a valid token.
func (a Auth) ParseToken(token string) (string, error) {
	if len(a.secret) == 0 {
		return "", fmt.Errorf("%w: server has no signing secret", ErrUnauthorized)
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return claims.Subject, nil
}

// Wrap rejects requests without a valid bearer token and stores the user
// id in the request context.
func (a Auth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			writeError(w, fmt.Errorf("%w: missing bearer token", ErrUnauthorized))
			return
		}
		userID, err := a.ParseToken(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	return uid, ok && uid != ""
}
