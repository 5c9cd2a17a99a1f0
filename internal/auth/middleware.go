package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/video-vault/internal/model"
	"github.com/sakif/video-vault/internal/repository"
)

// contextKey is an unexported type used for context keys in this package.
// A package-private key type prevents collisions: only this package can
// create a contextKey, so only this package can read or write the user
// value in the context.
type contextKey string

const userKey contextKey = "user"

// RequireAuth enforces authentication on protected routes.
//
// It reads the bearer token from the Authorization header, validates the
// JWT, and then RE-RESOLVES the user from the store before storing it in
// the request context.
//
// WHY HIT THE DATABASE WHEN THE TOKEN ALREADY CARRIES THE ROLE?
// The role claim is a snapshot from login time. If an admin is demoted (or
// a user promoted) mid-token-lifetime, trusting the claim would honor the
// stale privilege until expiry. Looking the user up per request costs one
// indexed read and makes role changes effective immediately.
//
// Failure modes, all 401:
//   - no Authorization header / no Bearer prefix → unauthenticated
//   - malformed, tampered, or expired token      → invalid token
//   - token subject no longer in the store       → invalid token
func RequireAuth(tokens *TokenService, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				http.Error(w, `{"error":"unauthorized","message":"authentication required"}`, http.StatusUnauthorized)
				return
			}

			identity, err := tokens.Validate(raw)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			user, err := users.GetUserByID(r.Context(), identity.UserID)
			if err != nil {
				// Valid signature but the subject is gone — treat the
				// token as invalid rather than leaking store errors.
				http.Error(w, `{"error":"unauthorized","message":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers whose resolved role is not admin.
//
// It must be mounted AFTER RequireAuth — it reads the user that RequireAuth
// stored in the context. A valid token with a non-admin role gets 403, not
// 401: the caller is known, they just aren't allowed.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			http.Error(w, `{"error":"unauthorized","message":"authentication required"}`, http.StatusUnauthorized)
			return
		}

		if user.Role != model.RoleAdmin {
			http.Error(w, `{"error":"forbidden","message":"admin access required"}`, http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// UserFromContext retrieves the authenticated user from the request context.
// Returns (nil, false) if the request passed through no auth middleware.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
