package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestMiddleware(t *testing.T) {
	var gotID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(testSecret)(next)

	do := func(authHeader string) *httptest.ResponseRecorder {
		gotID = ""
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid token", func(t *testing.T) {
		tok := signToken(t, testSecret, "user-42", time.Now().Add(time.Hour))
		rec := do("Bearer " + tok)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-42", gotID)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := do("")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("not a bearer token", func(t *testing.T) {
		rec := do("Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok := signToken(t, "other-secret", "user-42", time.Now().Add(time.Hour))
		rec := do("Bearer " + tok)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		tok := signToken(t, testSecret, "user-42", time.Now().Add(-time.Hour))
		rec := do("Bearer " + tok)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty subject", func(t *testing.T) {
		tok := signToken(t, testSecret, "", time.Now().Add(time.Hour))
		rec := do("Bearer " + tok)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestUserID(t *testing.T) {
	ctx := WithUserID(context.Background(), "u1")
	id, ok := UserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", id)

	_, ok = UserID(context.Background())
	assert.False(t, ok)
}
