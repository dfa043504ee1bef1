package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"

	"association-portal/backend/internal/authctx"
)

type ctxKey string

const authUserKey ctxKey = "authUser"

type AuthUser struct {
	UID    string
	Email  string
	Claims map[string]any
}

func WithAuth(authClient *auth.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
				http.Error(w, "missing Authorization: Bearer <token>", http.StatusUnauthorized)
				return
			}
			idToken := strings.TrimSpace(h[len("Bearer "):])

			tok, err := authClient.VerifyIDToken(r.Context(), idToken)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			au := &AuthUser{
				UID:    tok.UID,
				Claims: tok.Claims,
			}
			if v, ok := tok.Claims["email"].(string); ok {
				au.Email = v
			}

			ctx := context.WithValue(r.Context(), authUserKey, au)
			ctx = authctx.WithUID(ctx, au.UID)
			ctx = authctx.WithClaims(ctx, au.Claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetAuthUser(ctx context.Context) (*AuthUser, bool) {
	v := ctx.Value(authUserKey)
	if v == nil {
		return nil, false
	}
	au, ok := v.(*AuthUser)
	return au, ok
}

// WithTestUser injects an AuthUser directly, bypassing token verification.
// Test use only.
func WithTestUser(r *http.Request, au *AuthUser) *http.Request {
	ctx := context.WithValue(r.Context(), authUserKey, au)
	ctx = authctx.WithUID(ctx, au.UID)
	ctx = authctx.WithClaims(ctx, au.Claims)
	return r.WithContext(ctx)
}

// IsAdmin checks the admin role in custom claims (set via cmd/set-role).
func IsAdmin(claims map[string]any) bool {
	if claims == nil {
		return false
	}
	if admin, ok := claims["admin"].(bool); ok && admin {
		return true
	}
	if role, ok := claims["role"].(string); ok && role == "admin" {
		return true
	}
	return false
}

// RequireAdmin gates a route group behind the admin claim. Must run after
// WithAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authctx.Claims(r.Context())
		if !ok || !IsAdmin(claims) {
			http.Error(w, "admin permission required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
