package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/video-vault/internal/auth"
	"github.com/sakif/video-vault/internal/service"
)

// AuthHandler exposes registration, login, and the current-user profile.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister → create an account, return the sanitized user
//   - HandleLogin    → verify credentials, return a bearer token + user
//   - HandleMe       → return the authenticated caller's profile
//
// All business rules live in AuthService — these methods only parse JSON,
// call the service, and translate the result to HTTP.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, logger: logger}
}

// registerRequest deliberately has NO role field. A client-supplied role at
// registration would be a privilege escalation hole; unknown JSON fields
// (including "role") are simply ignored by the decoder.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/register
// Body: {"name": "Ana", "email": "ana@x.com", "password": "secret1"}
//
// Responds 201 with the sanitized user (the password hash never appears —
// the model excludes it from JSON). Duplicate email → 409, bad input → 400.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid register JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	user, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleLogin verifies credentials and issues a bearer token.
//
// HTTP: POST /api/login
// Body: {"email": "ana@x.com", "password": "secret1"}
//
// Responds 200 with {"token": "<jwt>", "user": {...}}. Wrong password and
// unknown email produce the identical 401 — no user enumeration.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid login JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	result, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": result.Token,
		"user":  result.User,
	})
}

// HandleMe returns the authenticated caller's profile.
//
// HTTP: GET /api/me
// Auth: required (RequireAuth resolves the user into the context)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		// Should never happen on a RequireAuth-protected route, but be safe.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}

	writeJSON(w, http.StatusOK, user)
}
