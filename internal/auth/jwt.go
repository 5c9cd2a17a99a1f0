// Package auth provides JWT token generation and validation for the catalog API.
//
// AUTHENTICATION FLOW:
//  1. User registers with email + password (POST /api/register)
//  2. User logs in (POST /api/login) → server verifies the bcrypt hash and
//     issues a signed JWT carrying the user's ID and role
//  3. On subsequent API calls, the client sends "Authorization: Bearer <jwt>";
//     middleware validates the token and resolves the user for the handlers
//
// JWT is stateless — all the information needed (user ID, role, expiry) is
// inside the signed token, and the HMAC signature ensures nobody can tamper
// with it without the server-held secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "video-vault"

// Identity is the subject a valid token resolves to: who the caller is and
// what they were allowed to do when the token was issued.
//
// NOTE ON THE ROLE CLAIM:
// The role inside the token is a snapshot from login time. The auth
// middleware re-resolves the user from the store on every request, so the
// effective role is always the current one — the claim exists so the client
// can adapt its UI without an extra round trip.
type Identity struct {
	UserID string
	Role   string
}

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens, and the
// token lifetime. The same secret must be used for both operations.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. The secret should be at least 32 bytes of random data in
// production (JWT_SECRET=$(openssl rand -hex 32)). A non-positive ttl
// defaults to 24 hours.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims is the JWT payload. It embeds jwt.RegisteredClaims (Subject,
// ExpiresAt, IssuedAt, Issuer) and adds the user's role.
//
// The standard "sub" claim carries the internal user ID.
type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Generate creates and signs a JWT access token for the given user.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, fast, and the right
// choice for a single-server deployment where issuer and verifier share
// the secret.
func (s *TokenService) Generate(userID, role string) (string, error) {
	now := time.Now()

	c := claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used by tests to produce already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID, role string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the Identity it
// encodes.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired (ExpiresAt is in the future)
//   - Issuer matches "video-vault" (rejects tokens from other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks —
//     jwt.WithValidMethods stops an attacker sending an alg:none token)
func (s *TokenService) Validate(tokenStr string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			// Reject tokens that aren't signed with HMAC
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		// Translate jwt library errors into cleaner messages
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return &Identity{UserID: c.Subject, Role: c.Role}, nil
}
