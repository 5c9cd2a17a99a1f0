// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is the authorization level of a user account.
//
// We define a named string type (not a bare string) so the compiler catches
// typos like "amdin" at the call site, and so the valid values live next to
// the type instead of being scattered through the codebase.
type Role string

const (
	RoleUser  Role = "user"  // default role — can browse the catalog
	RoleAdmin Role = "admin" // can also create, update, and delete movies
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered account.
//
// WHY json:"-" ON PasswordHash?
// The hash must never leave the server. Tagging the field with "-" means
// encoding/json skips it entirely, so every handler that serializes a User
// automatically produces the sanitized view — there is no separate "safe"
// struct to keep in sync, and no way to leak the hash by forgetting a mapping.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`
	Email        string    `json:"email"     db:"email"` // stored lowercased
	PasswordHash string    `json:"-"         db:"password_hash"`
	Role         Role      `json:"role"      db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
