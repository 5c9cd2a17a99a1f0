package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/xid"
	"github.com/sakif/video-vault/internal/apperror"
	"github.com/sakif/video-vault/internal/model"
	"github.com/sakif/video-vault/internal/repository"
)

// Validation constants for the catalog.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	DefaultPopularLimit  = 10
	MaxPopularLimit      = 100
)

// urlPattern accepts only absolute http(s) URLs. The movie and thumbnail
// fields reference externally hosted content, so anything else (ftp://,
// javascript:, relative paths) is rejected up front.
var urlPattern = regexp.MustCompile(`^https?://.+`)

// MovieService handles business logic for the video catalog.
type MovieService struct {
	repo   repository.MovieRepository
	logger *slog.Logger
}

// NewMovieService creates a MovieService.
func NewMovieService(repo repository.MovieRepository, logger *slog.Logger) *MovieService {
	return &MovieService{
		repo:   repo,
		logger: logger,
	}
}

// List returns the whole catalog, newest-created first.
func (s *MovieService) List(ctx context.Context) ([]model.Movie, error) {
	movies, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list movies", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing movies: %w", err)
	}
	return movies, nil
}

// ListPopular returns up to limit movies by view count descending.
// limit is clamped to a sane range; 0 means the default of 10.
func (s *MovieService) ListPopular(ctx context.Context, limit int) ([]model.Movie, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	if limit > MaxPopularLimit {
		limit = MaxPopularLimit
	}

	movies, err := s.repo.ListPopular(ctx, limit)
	if err != nil {
		s.logger.Error("failed to list popular movies", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing popular movies: %w", err)
	}
	return movies, nil
}

// Search returns movies matching the query (case-insensitive substring on
// title or description), newest-created first.
//
// An empty query is a validation failure; a query that matches nothing is a
// successful empty result — "you asked a bad question" and "the answer is
// nothing" are different outcomes.
func (s *MovieService) Search(ctx context.Context, query string) ([]model.Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.ValidationFailed("q", "search query is required")
	}

	movies, err := s.repo.Search(ctx, query)
	if err != nil {
		s.logger.Error("failed to search movies",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("searching movies: %w", err)
	}
	return movies, nil
}

// GetByID returns a movie and counts the view.
//
// The counter is bumped with an atomic UPDATE before the read, so the
// returned record already reflects this fetch — calling GetByID N times
// yields views == N for a fresh movie. The increment is the only side
// effect, and it happens exactly once per successful fetch.
func (s *MovieService) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	if err := validateMovieID(id); err != nil {
		return nil, err
	}

	if err := s.repo.IncrementViews(ctx, id); err != nil {
		return nil, err
	}

	movie, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return movie, nil
}

// Create validates and persists a new catalog entry. The router enforces
// that only admins reach this; createdBy is the resolved caller, recorded
// once and never reassigned.
func (s *MovieService) Create(ctx context.Context, createdBy, title, description, url, thumbnail string) (*model.Movie, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	if !urlPattern.MatchString(url) {
		return nil, apperror.ValidationFailed("url", "url must be a valid http(s) URL")
	}
	if !urlPattern.MatchString(thumbnail) {
		return nil, apperror.ValidationFailed("thumbnail", "thumbnail must be a valid http(s) URL")
	}
	if createdBy == "" {
		return nil, apperror.ValidationFailed("createdBy", "creating user is required")
	}

	movie := &model.Movie{
		Title:       title,
		Description: description,
		URL:         url,
		Thumbnail:   thumbnail,
		CreatedBy:   createdBy,
	}

	if err := s.repo.Create(ctx, movie); err != nil {
		s.logger.Error("failed to create movie",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating movie: %w", err)
	}

	s.logger.Info("movie created",
		slog.String("id", movie.ID),
		slog.String("title", movie.Title),
		slog.String("createdBy", movie.CreatedBy),
	)

	return movie, nil
}

// Update modifies an existing movie. Only the four content fields are
// mutable; an empty field means "leave unchanged". Fields that are present
// are re-validated with the same rules as Create.
func (s *MovieService) Update(ctx context.Context, id, title, description, url, thumbnail string) (*model.Movie, error) {
	if err := validateMovieID(id); err != nil {
		return nil, err
	}

	// Fetch-then-update: confirms existence and gives us the current
	// values to merge the partial update into.
	movie, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if title = strings.TrimSpace(title); title != "" {
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		movie.Title = title
	}
	if description = strings.TrimSpace(description); description != "" {
		if err := validateDescription(description); err != nil {
			return nil, err
		}
		movie.Description = description
	}
	if url != "" {
		if !urlPattern.MatchString(url) {
			return nil, apperror.ValidationFailed("url", "url must be a valid http(s) URL")
		}
		movie.URL = url
	}
	if thumbnail != "" {
		if !urlPattern.MatchString(thumbnail) {
			return nil, apperror.ValidationFailed("thumbnail", "thumbnail must be a valid http(s) URL")
		}
		movie.Thumbnail = thumbnail
	}

	if err := s.repo.Update(ctx, movie); err != nil {
		s.logger.Error("failed to update movie",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating movie: %w", err)
	}

	s.logger.Info("movie updated", slog.String("id", movie.ID))

	return movie, nil
}

// Delete removes a movie by its ID. No cascade — users are untouched.
func (s *MovieService) Delete(ctx context.Context, id string) error {
	if err := validateMovieID(id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("movie deleted", slog.String("id", id))
	return nil
}

// validateMovieID rejects IDs that can't possibly name a movie.
// Movie IDs are xids, so a string that doesn't parse as one is a malformed
// identifier (400), distinct from a well-formed ID with no record (404).
func validateMovieID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.ValidationFailed("id", "movie ID is required")
	}
	if _, err := xid.FromString(id); err != nil {
		return apperror.ValidationFailed("id", "invalid movie ID")
	}
	return nil
}

func validateTitle(title string) error {
	if title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	return nil
}

func validateDescription(description string) error {
	if description == "" {
		return apperror.ValidationFailed("description", "description is required")
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	return nil
}
