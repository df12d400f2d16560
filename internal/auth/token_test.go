package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "student-1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestStaticTokenSource(t *testing.T) {
	src := NewStaticTokenSource("tok-123")
	token, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestStaticTokenSourceEmpty(t *testing.T) {
	_, err := NewStaticTokenSource("").Token(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestJWTTokenSourceCachesUntilExpiry(t *testing.T) {
	calls := 0
	fresh := signedToken(t, time.Now().Add(time.Hour))
	src := NewJWTTokenSource(func(ctx context.Context) (string, error) {
		calls++
		return fresh, nil
	}, time.Minute)

	for i := 0; i < 3; i++ {
		token, err := src.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, fresh, token)
	}
	assert.Equal(t, 1, calls, "a live token must be served from cache")
}

func TestJWTTokenSourceRefreshesExpiredToken(t *testing.T) {
	tokens := []string{
		signedToken(t, time.Now().Add(-time.Minute)),
		signedToken(t, time.Now().Add(time.Hour)),
	}
	calls := 0
	src := NewJWTTokenSource(func(ctx context.Context) (string, error) {
		token := tokens[calls]
		calls++
		return token, nil
	}, time.Minute)

	first, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tokens[0], first)

	// The cached token is already expired, so the next call refreshes.
	second, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tokens[1], second)
	assert.Equal(t, 2, calls)
}

func TestJWTTokenSourceOpaqueTokenNeverExpires(t *testing.T) {
	calls := 0
	src := NewJWTTokenSource(func(ctx context.Context) (string, error) {
		calls++
		return "opaque-token", nil
	}, time.Minute)

	for i := 0; i < 2; i++ {
		token, err := src.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "opaque-token", token)
	}
	assert.Equal(t, 1, calls)
}

func TestJWTTokenSourceWithoutRefresh(t *testing.T) {
	src := NewJWTTokenSource(nil, 0)
	_, err := src.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}
