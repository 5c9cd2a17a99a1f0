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

// compile-time check that *DB implements repository.MovieRepository
var _ repository.MovieRepository = (*DB)(nil)

const movieColumns = `id, title, description, url, thumbnail, views, created_by, created_at`

// Create inserts a new movie. The repository assigns the ID and creation
// timestamp; the view counter starts at 0 via the column default.
func (db *DB) Create(ctx context.Context, movie *model.Movie) error {
	movie.ID = xid.New().String()
	movie.CreatedAt = time.Now().UTC()
	movie.Views = 0

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO movies (id, title, description, url, thumbnail, views, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		movie.ID,
		movie.Title,
		movie.Description,
		movie.URL,
		movie.Thumbnail,
		movie.CreatedBy,
		movie.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating movie: %w", err)
	}

	return nil
}

// GetByID retrieves a single movie by its ID.
// Returns apperror.ErrNotFound if the movie doesn't exist.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	var m model.Movie

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`,
		id,
	).Scan(
		&m.ID, &m.Title, &m.Description, &m.URL, &m.Thumbnail,
		&m.Views, &m.CreatedBy, &m.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("movie", id)
		}
		return nil, fmt.Errorf("sqlite: getting movie %s: %w", id, err)
	}

	return &m, nil
}

// List returns every movie, newest-created first. The catalog is small by
// design, so a full scan without pagination is acceptable here.
func (db *DB) List(ctx context.Context) ([]model.Movie, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+movieColumns+` FROM movies ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing movies: %w", err)
	}
	defer rows.Close()

	return scanMovies(rows)
}

// ListPopular returns up to limit movies ordered by view count descending.
// Ties fall back to the store's natural order.
func (db *DB) ListPopular(ctx context.Context, limit int) ([]model.Movie, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+movieColumns+` FROM movies ORDER BY views DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing popular movies: %w", err)
	}
	defer rows.Close()

	return scanMovies(rows)
}

// Search returns movies whose title or description contains the query,
// newest-created first.
//
// CASE-INSENSITIVE MATCHING:
// SQLite's LIKE is only case-insensitive for ASCII, and only when the
// operand isn't a BLOB, so we normalize both sides through lower() instead
// of relying on that quirk. The instr() call does plain substring matching,
// which also means LIKE metacharacters (% and _) in the query are treated
// literally — no escaping needed.
func (db *DB) Search(ctx context.Context, query string) ([]model.Movie, error) {
	q := strings.ToLower(query)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+movieColumns+`
		 FROM movies
		 WHERE instr(lower(title), ?) > 0 OR instr(lower(description), ?) > 0
		 ORDER BY created_at DESC`,
		q, q,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching movies: %w", err)
	}
	defer rows.Close()

	return scanMovies(rows)
}

// Update modifies the four content fields of an existing movie.
// id, views, created_by, and created_at are immutable here — views only
// moves through IncrementViews, ownership is set once at creation.
func (db *DB) Update(ctx context.Context, movie *model.Movie) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE movies
		 SET title = ?, description = ?, url = ?, thumbnail = ?
		 WHERE id = ?`,
		movie.Title,
		movie.Description,
		movie.URL,
		movie.Thumbnail,
		movie.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating movie %s: %w", movie.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("movie", movie.ID)
	}

	return nil
}

// Delete removes a movie by its ID.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM movies WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting movie %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("movie", id)
	}

	return nil
}

// IncrementViews adds exactly 1 to the movie's view counter.
//
// The increment happens inside the UPDATE statement itself, so concurrent
// fetches of the same movie can't lose counts the way a read-modify-write
// in Go code would. RowsAffected detects "not found".
func (db *DB) IncrementViews(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE movies SET views = views + 1 WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing views for movie %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("movie", id)
	}

	return nil
}

// scanMovies drains a result set into a slice. Always check rows.Err()
// after the loop — it catches errors that happened during iteration.
func scanMovies(rows *sql.Rows) ([]model.Movie, error) {
	movies := []model.Movie{}

	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(
			&m.ID, &m.Title, &m.Description, &m.URL, &m.Thumbnail,
			&m.Views, &m.CreatedBy, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning movie row: %w", err)
		}
		movies = append(movies, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating movies: %w", err)
	}

	return movies, nil
}
