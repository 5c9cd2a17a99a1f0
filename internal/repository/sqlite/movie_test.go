package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/video-vault/internal/apperror"
	"github.com/sakif/video-vault/internal/model"
)

func createTestMovie(t *testing.T, db *DB, owner *model.User, title string) *model.Movie {
	t.Helper()
	movie := &model.Movie{
		Title:       title,
		Description: "a description of " + title,
		URL:         "http://videos.example.com/" + title,
		Thumbnail:   "http://thumbs.example.com/" + title,
		CreatedBy:   owner.ID,
	}
	if err := db.Create(context.Background(), movie); err != nil {
		t.Fatalf("failed to create test movie: %v", err)
	}
	// created_at drives the newest-first ordering; keep successive
	// fixtures from landing on the same timestamp.
	time.Sleep(2 * time.Millisecond)
	return movie
}

func TestMovieCreate_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "Root", "root@x.com", model.RoleAdmin)

	movie := &model.Movie{
		Title:       "The Matrix",
		Description: "A hacker discovers reality is a simulation",
		URL:         "http://videos.example.com/matrix",
		Thumbnail:   "http://thumbs.example.com/matrix.jpg",
		CreatedBy:   owner.ID,
	}
	if err := db.Create(context.Background(), movie); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if movie.ID == "" {
		t.Fatal("Create() did not set movie.ID")
	}

	found, err := db.GetByID(context.Background(), movie.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	// Everything submitted comes back unchanged; views starts at 0.
	if found.Title != movie.Title {
		t.Errorf("Title = %q, want %q", found.Title, movie.Title)
	}
	if found.Description != movie.Description {
		t.Errorf("Description = %q, want %q", found.Description, movie.Description)
	}
	if found.URL != movie.URL {
		t.Errorf("URL = %q, want %q", found.URL, movie.URL)
	}
	if found.Thumbnail != movie.Thumbnail {
		t.Errorf("Thumbnail = %q, want %q", found.Thumbnail, movie.Thumbnail)
	}
	if found.CreatedBy != owner.ID {
		t.Errorf("CreatedBy = %q, want %q", found.CreatedBy, owner.ID)
	}
	if found.Views != 0 {
		t.Errorf("Views = %d, want 0 at creation", found.Views)
	}
}

func TestMovieGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "missing-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestMovieList_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "Root", "root@x.com", model.RoleAdmin)

	createTestMovie(t, db, owner, "first")
	createTestMovie(t, db, owner, "second")
	createTestMovie(t, db, owner, "third")

	movies, err := db.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(movies) != 3 {
		t.Fatalf("List() returned %d movies, want 3", len(movies))
	}
	if movies[0].Title != "third" || movies[2].Title != "first" {
		t.Errorf("List() order = [%s %s %s], want newest first",
			movies[0].Title, movies[1].Title, movies[2].Title)
	}
}

func TestMovieList_Empty(t *testing.T) {
	db := newTestDB(t)

	movies, err := db.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if movies == nil {
		t.Error("List() should return an empty slice, not nil (serializes as [] not null)")
	}
	if len(movies) != 0 {
		t.Errorf("List() on empty db returned %d movies", len(movies))
	}
}

func TestMovieListPopular(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "Root", "root@x.com", model.RoleAdmin)

	low := createTestMovie(t, db, owner, "low")
	high := createTestMovie(t, db, owner, "high")
	mid := createTestMovie(t, db, owner, "mid")

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := db.IncrementViews(ctx, high.ID); err != nil {
			t.Fatalf("IncrementViews() error = %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := db.IncrementViews(ctx, mid.ID); err != nil {
			t.Fatalf("IncrementViews() error = %v", err)
		}
	}
	_ = low

	movies, err := db.ListPopular(ctx, 2)
	if err != nil {
		t.Fatalf("ListPopular() error = %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("ListPopular(2) returned %d movies, want 2", len(movies))
	}
	if movies[0].Title != "high" || movies[1].Title != "mid" {
		t.Errorf("ListPopular() order = [%s %s], want [high mid]", movies[0].Title, movies[1].Title)
	}
	// Descending view counts.
	if movies[0].Views < movies[1].Views {
		t.Errorf("Views not descending: %d < %d", movies[0].Views, movies[1].Views)
	}
}

func TestMovieSearch(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "Root", "root@x.com", model.RoleAdmin)

	matrix := &model.Movie{
		Title:       "The Matrix",
		Description: "A hacker discovers the truth",
		URL:         "http://v.example.com/1",
		Thumbnail:   "http://t.example.com/1",
		CreatedBy:   owner.ID,
	}
	inception := &model.Movie{
		Title:       "Inception",
		Description: "Dreams within dreams, a heist in the mind",
		URL:         "http://v.example.com/2",
		Thumbnail:   "http://t.example.com/2",
		CreatedBy:   owner.ID,
	}
	ctx := context.Background()
	if err := db.Create(ctx, matrix); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := db.Create(ctx, inception); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	cases := []struct {
		query string
		want  []string
	}{
		{"matrix", []string{"The Matrix"}},    // case-insensitive title match
		{"MATRIX", []string{"The Matrix"}},    // uppercase query
		{"heist", []string{"Inception"}},      // description match
		{"atri", []string{"The Matrix"}},      // substring, not whole word
		{"zzz_no_match", []string{}},          // empty result, not an error
		{"100%", []string{}},                  // LIKE metacharacters are literal
	}

	for _, tc := range cases {
		movies, err := db.Search(ctx, tc.query)
		if err != nil {
			t.Fatalf("Search(%q) error = %v", tc.query, err)
		}
		if len(movies) != len(tc.want) {
			t.Errorf("Search(%q) returned %d movies, want %d", tc.query, len(movies), len(tc.want))
			continue
		}
		for i, title := range tc.want {
			if movies[i].Title != title {
				t.Errorf("Search(%q)[%d].Title = %q, want %q", tc.query, i, movies[i].Title, title)
			}
		}
	}
}

func TestMovieIncrementViews(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "Root", "root@x.com", model.RoleAdmin)
	movie := createTestMovie(t, db, owner, "counted")

	ctx := context.Background()
	const n = 7
	for i := 0; i < n; i++ {
		if err := db.IncrementViews(ctx, movie.ID); err != nil {
			t.Fatalf("IncrementViews() error = %v", err)
		}
	}

	found, err := db.GetByID(ctx, movie.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Views != n {
		t.Errorf("Views = %d after %d increments, want %d", found.Views, n, n)
	}
}

func TestMovieIncrementViews_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.IncrementViews(context.Background(), "missing-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("IncrementViews() error = %v, want ErrNotFound", err)
	}
}

func TestMovieUpdate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "Root", "root@x.com", model.RoleAdmin)
	movie := createTestMovie(t, db, owner, "before")

	ctx := context.Background()
	if err := db.IncrementViews(ctx, movie.ID); err != nil {
		t.Fatalf("IncrementViews() error = %v", err)
	}

	movie.Title = "after"
	movie.Description = "rewritten"
	if err := db.Update(ctx, movie); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.GetByID(ctx, movie.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Title != "after" {
		t.Errorf("Title = %q, want %q", found.Title, "after")
	}
	// Update must not touch the view counter.
	if found.Views != 1 {
		t.Errorf("Views = %d, want 1 (unchanged by Update)", found.Views)
	}
	if found.CreatedBy != owner.ID {
		t.Errorf("CreatedBy = %q, want %q (never reassigned)", found.CreatedBy, owner.ID)
	}
}

func TestMovieUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Update(context.Background(), &model.Movie{ID: "missing-id", Title: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestMovieDelete(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "Root", "root@x.com", model.RoleAdmin)
	movie := createTestMovie(t, db, owner, "doomed")

	ctx := context.Background()
	if err := db.Delete(ctx, movie.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := db.GetByID(ctx, movie.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete: error = %v, want ErrNotFound", err)
	}

	// Deleting again is a not-found, not a silent success.
	if err := db.Delete(ctx, movie.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
