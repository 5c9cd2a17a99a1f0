package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/video-vault/internal/apperror"
	"github.com/sakif/video-vault/internal/model"
)

// newTestDB creates a fresh in-memory database per test. ":memory:" is
// fast, isolated, and destroyed when the connection closes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, name, email string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$04$fakefakefakefakefakefakefakefakefakefakefakefakefake",
		Role:         role,
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "Ana", "ana@x.com", model.RoleUser)

	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "Ana", "ana@x.com", model.RoleUser)

	dup := &model.User{Name: "Ana Again", Email: "ana@x.com", PasswordHash: "hash"}
	err := db.CreateUser(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateUser() with duplicate email: error = %v, want ErrConflict", err)
	}
}

func TestUserCreate_DuplicateEmailDifferentCase(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "Ana", "ana@x.com", model.RoleUser)

	// The email column is COLLATE NOCASE — the index itself must treat
	// these as the same address, even if a caller bypasses the service's
	// lowercasing.
	dup := &model.User{Name: "Ana Again", Email: "ANA@X.COM", PasswordHash: "hash"}
	err := db.CreateUser(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateUser() with same email in different case: error = %v, want ErrConflict", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	db := newTestDB(t)

	created := createTestUser(t, db, "Ana", "ana@x.com", model.RoleUser)

	found, err := db.GetByEmail(context.Background(), "ana@x.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
	if found.PasswordHash == "" {
		t.Error("GetByEmail() should return the password hash for verification")
	}
}

func TestUserGetByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByEmail(context.Background(), "nobody@x.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByID(t *testing.T) {
	db := newTestDB(t)

	created := createTestUser(t, db, "Ana", "ana@x.com", model.RoleAdmin)

	found, err := db.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want %q", found.Role, model.RoleAdmin)
	}
}

func TestUserUpdateRole(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "Ana", "ana@x.com", model.RoleUser)

	if err := db.UpdateRole(context.Background(), user.ID, model.RoleAdmin); err != nil {
		t.Fatalf("UpdateRole() error = %v", err)
	}

	found, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want %q after promotion", found.Role, model.RoleAdmin)
	}
}

func TestUserUpdateRole_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateRole(context.Background(), "missing-id", model.RoleAdmin)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateRole() error = %v, want ErrNotFound", err)
	}
}

func TestUserCountByRole(t *testing.T) {
	db := newTestDB(t)

	count, err := db.CountByRole(context.Background(), model.RoleAdmin)
	if err != nil {
		t.Fatalf("CountByRole() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountByRole() on empty db = %d, want 0", count)
	}

	createTestUser(t, db, "Ana", "ana@x.com", model.RoleUser)
	createTestUser(t, db, "Root", "root@x.com", model.RoleAdmin)

	count, err = db.CountByRole(context.Background(), model.RoleAdmin)
	if err != nil {
		t.Fatalf("CountByRole() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountByRole(admin) = %d, want 1", count)
	}
}
