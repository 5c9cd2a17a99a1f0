// Package repository defines the storage interfaces the service layer
// depends on. Concrete implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/sakif/video-vault/internal/model"
)

// UserRepository persists user accounts (the credential store).
//
// The user-side methods carry a User suffix where the movie repository has a
// method of the same shape — both interfaces are implemented by the same
// sqlite receiver, and Go has no method overloading.
type UserRepository interface {
	// CreateUser inserts a new user. The email must be unique (compared
	// case-insensitively); a duplicate is reported as a conflict error.
	CreateUser(ctx context.Context, user *model.User) error
	// GetByEmail looks up a user by their lowercased email address.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// UpdateRole changes a user's role. Returns not-found if no such user.
	UpdateRole(ctx context.Context, id string, role model.Role) error
	// CountByRole returns how many users hold the given role. Used at
	// startup to decide whether the bootstrap admin must be created.
	CountByRole(ctx context.Context, role model.Role) (int, error)
}

// MovieRepository persists catalog entries (the catalog store).
type MovieRepository interface {
	Create(ctx context.Context, movie *model.Movie) error
	GetByID(ctx context.Context, id string) (*model.Movie, error)
	// List returns every movie, newest-created first.
	List(ctx context.Context) ([]model.Movie, error)
	// ListPopular returns up to limit movies ordered by view count descending.
	ListPopular(ctx context.Context, limit int) ([]model.Movie, error)
	// Search returns movies whose title or description contains the query
	// (case-insensitive substring), newest-created first.
	Search(ctx context.Context, query string) ([]model.Movie, error)
	Update(ctx context.Context, movie *model.Movie) error
	Delete(ctx context.Context, id string) error
	// IncrementViews atomically adds 1 to the movie's view counter.
	// Returns not-found if no such movie.
	IncrementViews(ctx context.Context, id string) error
}
