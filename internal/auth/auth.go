package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey int

const claimsKey ctxKey = 0

type Claims struct {
	jwt.RegisteredClaims
}

// Middleware verifies a Bearer token signed with HS256 and stores the subject
// (user id) in the request context. Token issuance lives outside this service.
func Middleware(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" || raw == r.Header.Get("Authorization") {
				unauthorized(w, "missing bearer token")
				return
			}
			var claims Claims
			tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			})
			if err != nil || !tok.Valid || claims.Subject == "" {
				unauthorized(w, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user id, if any.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(claimsKey).(string)
	return id, ok && id != ""
}

// WithUserID injects a user id directly; handler tests use it in place of
// the middleware.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, claimsKey, id)
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
