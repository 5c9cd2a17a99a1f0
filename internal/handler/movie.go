package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/video-vault/internal/auth"
	"github.com/sakif/video-vault/internal/service"
)

// MovieHandler exposes the catalog endpoints.
//
// Read endpoints require a valid token; the write endpoints (create,
// update, delete) are additionally behind the admin gate in the router.
// The handler itself never checks roles — by the time a request reaches
// HandleCreate, the middleware chain has already vouched for the caller.
type MovieHandler struct {
	movies *service.MovieService
	logger *slog.Logger
}

// NewMovieHandler creates a MovieHandler.
func NewMovieHandler(movies *service.MovieService, logger *slog.Logger) *MovieHandler {
	return &MovieHandler{movies: movies, logger: logger}
}

// movieRequest is shared by create and update. On update, empty fields
// mean "leave unchanged".
type movieRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Thumbnail   string `json:"thumbnail"`
}

// HandleList returns the whole catalog, newest first.
//
// HTTP: GET /api/movies
func (h *MovieHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movies.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, movies)
}

// HandlePopular returns the most-viewed movies.
//
// HTTP: GET /api/movies/popular?limit=10
// limit is optional; the service clamps it (default 10, max 100).
func (h *MovieHandler) HandlePopular(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "limit must be an integer",
			})
			return
		}
		limit = n
	}

	movies, err := h.movies.ListPopular(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, movies)
}

// HandleSearch returns movies matching the q query parameter.
//
// HTTP: GET /api/movies/search?q=matrix
// A missing/empty q is 400; zero matches is 200 with an empty array.
func (h *MovieHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movies.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, movies)
}

// HandleGetByID returns one movie and counts the view.
//
// HTTP: GET /api/movies/{id}
// Every successful fetch bumps the movie's view counter by exactly one;
// the response already includes the incremented value.
func (h *MovieHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	movie, err := h.movies.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, movie)
}

// HandleCreate adds a movie to the catalog.
//
// HTTP: POST /api/movies  (admin only)
// Body: {"title": ..., "description": ..., "url": ..., "thumbnail": ...}
// The authenticated admin is recorded as the movie's creator.
func (h *MovieHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}

	var req movieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid movie JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	movie, err := h.movies.Create(r.Context(), user.ID, req.Title, req.Description, req.URL, req.Thumbnail)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, movie)
}

// HandleUpdate modifies a movie's content fields.
//
// HTTP: PUT /api/movies/{id}  (admin only)
// Body: any subset of the four content fields.
func (h *MovieHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req movieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid movie JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	movie, err := h.movies.Update(r.Context(), chi.URLParam(r, "id"), req.Title, req.Description, req.URL, req.Thumbnail)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, movie)
}

// HandleDelete removes a movie from the catalog.
//
// HTTP: DELETE /api/movies/{id}  (admin only)
func (h *MovieHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.movies.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "movie deleted"})
}
