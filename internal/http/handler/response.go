package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jaekwang-park/taskboard-api/internal/query"
	"github.com/jaekwang-park/taskboard-api/internal/service"
)

const maxBodySize = 1 << 20 // 1 MB

const (
	msgInvalidBody  = "Invalid request body."
	msgUnauthorized = "Unauthorized."
	msgInternal     = "Internal server error."
	msgTaskNotFound = "Task not found."
	msgUserNotFound = "User not exists."
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
	*Pagination
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	Limit       int `json:"limit"`
	Total       int `json:"total"`
}

func paginationOf[T any](p query.Page[T]) *Pagination {
	return &Pagination{
		CurrentPage: p.Page,
		TotalPages:  p.TotalPages,
		Limit:       p.Limit,
		Total:       p.Total,
	}
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: false, Message: message})
}

// decodeBody reads a JSON request body of at most maxBodySize bytes.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}

type errorInfo struct {
	err    error
	status int
	// message is the fixed client text. Empty means the validation detail
	// carried by the error is shown instead.
	message string
}

// errorTable is checked in order, so specific errors precede the ones they wrap.
var errorTable = []errorInfo{
	{service.ErrPastDueDate, http.StatusBadRequest, "Past date provided."},
	{service.ErrInvalidAssignee, http.StatusBadRequest, "Invalid assigned_to provided."},
	{service.ErrInvalidInput, http.StatusBadRequest, ""},
	{service.ErrNoResults, http.StatusBadRequest, "No result found."},
	{service.ErrProtectedUser, http.StatusBadRequest, "Provided user is admin user."},
	{service.ErrConflict, http.StatusConflict, "This email is already registered."},
	{service.ErrEmailNotRegistered, http.StatusUnauthorized, "This email is not registered."},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials."},
	{service.ErrForbidden, http.StatusUnauthorized, msgUnauthorized},
}

func lookupError(err error) (errorInfo, bool) {
	for _, info := range errorTable {
		if errors.Is(err, info.err) {
			return info, true
		}
	}
	return errorInfo{}, false
}

// handleServiceError renders err with a fixed message. notFound is the text
// used for service.ErrNotFound, which differs per resource.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	if errors.Is(err, service.ErrNotFound) {
		WriteError(w, http.StatusNotFound, notFound)
		return
	}

	if info, ok := lookupError(err); ok {
		msg := info.message
		if msg == "" {
			msg = validationMessage(err)
		}
		slog.DebugContext(r.Context(), "request rejected", "status", info.status, "detail", err.Error())
		WriteError(w, info.status, msg)
		return
	}

	slog.ErrorContext(r.Context(), "internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	WriteError(w, http.StatusInternalServerError, msgInternal)
}

func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")
}
