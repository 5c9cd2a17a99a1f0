package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/video-vault/internal/model"
	"github.com/sakif/video-vault/internal/service"
)

// UserHandler exposes admin-only account management. Registration grants
// nobody the admin role, so this is the only runtime path to promote (or
// demote) an account.
type UserHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(authService *service.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{auth: authService, logger: logger}
}

type roleRequest struct {
	Role string `json:"role"`
}

// HandleUpdateRole sets a user's role.
//
// HTTP: PUT /api/users/{id}/role  (admin only)
// Body: {"role": "admin"} or {"role": "user"}
//
// The change takes effect on the target's next request — the auth
// middleware re-resolves users from the store, so no token reissue is
// needed.
func (h *UserHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid role JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	user, err := h.auth.ChangeRole(r.Context(), chi.URLParam(r, "id"), model.Role(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
