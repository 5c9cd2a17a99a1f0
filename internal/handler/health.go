package handler

import (
	"net/http"
	"time"
)

// HandleHealth is a liveness probe.
//
// HTTP: GET /api/health — no auth, no dependencies touched.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
