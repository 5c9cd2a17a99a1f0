// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services accept primitives and return domain errors — they have zero
// knowledge of HTTP. Handlers translate those errors to status codes.
// Services receive repository interfaces (not the concrete sqlite type),
// so tests can inject in-memory fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sakif/video-vault/internal/apperror"
	"github.com/sakif/video-vault/internal/auth"
	"github.com/sakif/video-vault/internal/model"
	"github.com/sakif/video-vault/internal/repository"
)

// Validation constants for registration.
const (
	MinNameLength     = 2
	MaxNameLength     = 50
	MinPasswordLength = 6
)

// emailPattern is a deliberately simple sanity check, not a full RFC 5322
// validator. The real guarantee of a working address would be a
// confirmation email, which is out of scope.
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)

// AuthService handles registration, login, and identity resolution.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the HTTP handler
// can respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register validates the input, hashes the password, and persists a new
// account.
//
// ROLE IS NOT A PARAMETER — ON PURPOSE.
// Letting the registration request carry a role would allow anyone to
// self-assign admin. Every account starts as a regular user; the only paths
// to admin are the startup bootstrap (EnsureAdmin) and promotion by an
// existing admin (ChangeRole).
//
// The plaintext password exists only for the duration of this call. It is
// hashed immediately and never stored, logged, or returned.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	// Length bounds are in characters, not bytes — a 20-rune CJK name is
	// well within the limit even though it is 60 bytes of UTF-8.
	if nameLen := utf8.RuneCountInString(name); nameLen < MinNameLength || nameLen > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("name must be between %d and %d characters", MinNameLength, MaxNameLength))
	}
	if !emailPattern.MatchString(email) {
		return nil, apperror.ValidationFailed("email", "a valid email address is required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	// Check for an existing account first for a clean conflict error.
	// Two concurrent registrations can still race past this — the UNIQUE
	// index in the store is the real enforcement, and the repository maps
	// that violation to the same conflict error.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("an account with this email already exists")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if appErr := asAppError(err); appErr != nil {
			return nil, err
		}
		s.logger.Error("failed to create user",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Authenticate verifies the credentials and issues a signed token.
//
// NO USER ENUMERATION:
// An unknown email and a wrong password both return the exact same
// InvalidCredentials error. The lookup failure must not be distinguishable
// from a hash mismatch in the response.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("credentials", "email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if appErr := asAppError(err); appErr != nil {
			// Unknown email — same response as a wrong password.
			return nil, apperror.InvalidCredentials()
		}
		s.logger.Error("failed to look up user for login", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.InvalidCredentials()
	}

	token, err := s.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for the given internal ID. Used by the
// /api/me handler after the middleware resolves the identity.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetUserByID(ctx, id)
}

// ChangeRole sets a user's role. The HTTP router restricts this to admin
// callers; the service only validates the inputs.
//
// Because the auth middleware re-resolves the user from the store on every
// request, a role change takes effect on the target's very next request —
// their existing token does not need to be reissued.
func (s *AuthService) ChangeRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	if !role.Valid() {
		return nil, apperror.ValidationFailed("role",
			fmt.Sprintf("role must be %q or %q", model.RoleUser, model.RoleAdmin))
	}

	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}

	s.logger.Info("user role changed",
		slog.String("userID", id),
		slog.String("role", string(role)),
	)

	return s.users.GetUserByID(ctx, id)
}

// EnsureAdmin creates the bootstrap admin account if no admin exists yet.
// Called once at startup with credentials from the environment. Without
// this there would be no way to mint the first admin, since registration
// never grants the role.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	count, err := s.users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("service/auth: counting admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	user, err := s.Register(ctx, name, email, password)
	if err != nil {
		return fmt.Errorf("service/auth: creating bootstrap admin: %w", err)
	}

	if _, err := s.ChangeRole(ctx, user.ID, model.RoleAdmin); err != nil {
		return fmt.Errorf("service/auth: promoting bootstrap admin: %w", err)
	}

	s.logger.Info("bootstrap admin created", slog.String("email", user.Email))
	return nil
}

// normalizeEmail lowercases and trims an email address. All lookups and
// storage go through this, so "Ana@X.com" and "ana@x.com" are one account.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// asAppError extracts an *apperror.AppError from the chain, or nil.
// Domain errors pass through untouched; anything else gets wrapped with
// context by the caller.
func asAppError(err error) *apperror.AppError {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
