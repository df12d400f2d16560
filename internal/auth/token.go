// Package auth supplies bearer tokens for requests to the StudyHall API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken is returned when no token is available and no refresh func is
// configured.
var ErrNoToken = errors.New("auth: no token available")

// TokenSource yields a bearer token for an outgoing request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns the same token for every request.
type StaticTokenSource struct {
	token string
}

// NewStaticTokenSource creates a source over a fixed token.
func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{token: token}
}

// Token returns the fixed token.
func (s *StaticTokenSource) Token(ctx context.Context) (string, error) {
	if s.token == "" {
		return "", ErrNoToken
	}
	return s.token, nil
}

// RefreshFunc obtains a fresh bearer token.
type RefreshFunc func(ctx context.Context) (string, error)

// JWTTokenSource caches a JWT and refreshes it shortly before its exp claim.
// The token is not verified client-side; only its expiry is inspected.
type JWTTokenSource struct {
	mu      sync.Mutex
	refresh RefreshFunc
	leeway  time.Duration
	token   string
	expiry  time.Time
}

// NewJWTTokenSource creates a source that calls refresh when the cached
// token is absent or within leeway of expiring.
func NewJWTTokenSource(refresh RefreshFunc, leeway time.Duration) *JWTTokenSource {
	if leeway <= 0 {
		leeway = 30 * time.Second
	}
	return &JWTTokenSource{refresh: refresh, leeway: leeway}
}

// Token returns the cached token, refreshing it if needed.
func (s *JWTTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && (s.expiry.IsZero() || time.Now().Before(s.expiry.Add(-s.leeway))) {
		return s.token, nil
	}
	if s.refresh == nil {
		return "", ErrNoToken
	}

	token, err := s.refresh(ctx)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	s.token = token
	s.expiry = tokenExpiry(token)
	return s.token, nil
}

// tokenExpiry extracts the exp claim without verifying the signature. A
// token that does not parse as a JWT is treated as non-expiring.
func tokenExpiry(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
