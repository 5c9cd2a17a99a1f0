package model

import "time"

// Movie represents a catalog entry. The video itself is hosted elsewhere —
// URL and Thumbnail only reference external content.
//
// Views counts successful fetches of this movie by ID. It is incremented by
// the repository with an atomic UPDATE, so it only ever grows.
type Movie struct {
	ID          string    `json:"id"          db:"id"`
	Title       string    `json:"title"       db:"title"`
	Description string    `json:"description" db:"description"`
	URL         string    `json:"url"         db:"url"`
	Thumbnail   string    `json:"thumbnail"   db:"thumbnail"`
	Views       int64     `json:"views"       db:"views"`
	CreatedBy   string    `json:"createdBy"   db:"created_by"` // user ID of the admin who added it
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}
