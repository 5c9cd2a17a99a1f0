package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/video-vault/internal/apperror"
	"github.com/sakif/video-vault/internal/model"
	"github.com/sakif/video-vault/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user. (The movie side of this receiver also has a
// create method, so the user methods carry the suffix.)
//
// ID GENERATION WITH xid:
// xid generates 20-char, URL-safe, time-sortable IDs (e.g.
// "cv37rs3pp9olc6atsptg"). The repository assigns it so callers never have
// to think about ID schemes.
//
// DUPLICATE EMAILS:
// The service checks for an existing email before calling Create, but two
// concurrent registrations can still race past that check. The UNIQUE index
// is the real enforcement — we translate its violation into the same
// conflict error so the caller sees one consistent failure mode.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("an account with this email already exists")
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email. The email column is COLLATE NOCASE,
// so the lookup itself is case-insensitive.
// Returns apperror.ErrNotFound if no user exists with that email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	var role string

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, created_at
		 FROM users WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}

	u.Role = model.Role(role)
	return &u, nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	var role string

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, created_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	u.Role = model.Role(role)
	return &u, nil
}

// UpdateRole changes a user's role. RowsAffected detects "not found" —
// one query instead of a SELECT + UPDATE pair.
func (db *DB) UpdateRole(ctx context.Context, id string, role model.Role) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE id = ?`,
		string(role), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating role for user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}

// CountByRole returns how many users hold the given role.
func (db *DB) CountByRole(ctx context.Context, role model.Role) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = ?`,
		string(role),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting users by role: %w", err)
	}
	return count, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The pure-Go driver doesn't export a typed error for this, so we
// match on the well-known message prefix SQLite produces.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
