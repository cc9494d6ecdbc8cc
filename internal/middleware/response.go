package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	msgUnauthorized   = "Unauthorized."
	msgSessionExpired = "Session expired."
	msgInternal       = "Internal server error."
	msgTooManyLogins  = "Too many login attempts, please try again later."
)

// writeError renders the failure envelope shared with the HTTP handlers.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
