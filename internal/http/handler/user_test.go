package handler_test

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jaekwang-park/taskboard-api/internal/auth"
	"github.com/jaekwang-park/taskboard-api/internal/http/handler"
	"github.com/jaekwang-park/taskboard-api/internal/model"
	"github.com/jaekwang-park/taskboard-api/internal/service"
)

func TestUserHandler_List(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name      string
		query     string
		wantTotal int
		wantItems int
	}{
		{"all users", "", 3, 3},
		{"search is case-insensitive", "?search=ALICE", 1, 1},
		{"paged", "?limit=2&page=2", 3, 1},
		{"no match is an empty page", "?search=zzz", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(t, http.MethodGet, "/api/v1/users"+tt.query, nil, &e.bob)
			w := httptest.NewRecorder()

			e.users.List(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
			}
			env := decode(t, w)
			if *env.Total != tt.wantTotal {
				t.Errorf("expected total %d, got %d", tt.wantTotal, *env.Total)
			}
			var items []map[string]any
			if err := json.Unmarshal(env.Data, &items); err != nil {
				t.Fatalf("failed to decode items: %v", err)
			}
			if len(items) != tt.wantItems {
				t.Errorf("expected %d items, got %d", tt.wantItems, len(items))
			}
			for _, item := range items {
				if _, ok := item["password_hash"]; ok {
					t.Error("expected password hash to be omitted")
				}
			}
		})
	}

	t.Run("malformed limit", func(t *testing.T) {
		req := newRequest(t, http.MethodGet, "/api/v1/users?limit=-5", nil, &e.bob)
		w := httptest.NewRecorder()

		e.users.List(w, req)

		expectError(t, w, http.StatusBadRequest, "limit must be a positive integer")
	})

	t.Run("page beyond int range", func(t *testing.T) {
		req := newRequest(t, http.MethodGet, "/api/v1/users?page=9223372036854775807", nil, &e.bob)
		w := httptest.NewRecorder()

		e.users.List(w, req)

		expectError(t, w, http.StatusBadRequest, "page is too large")
	})
}

func TestUserHandler_AdminOperations(t *testing.T) {
	e := newEnv(t)

	t.Run("create as admin", func(t *testing.T) {
		req := newRequest(t, http.MethodPost, "/api/v1/users", map[string]string{
			"first_name": "Dan",
			"email":      "dan@example.com",
			"password":   password,
		}, &e.admin)
		w := httptest.NewRecorder()

		e.users.Create(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		var user struct {
			Role string `json:"role"`
		}
		if err := json.Unmarshal(decode(t, w).Data, &user); err != nil {
			t.Fatalf("failed to decode user: %v", err)
		}
		if user.Role != "user" {
			t.Errorf("expected role user, got %s", user.Role)
		}
	})

	t.Run("create as regular user", func(t *testing.T) {
		req := newRequest(t, http.MethodPost, "/api/v1/users", map[string]string{
			"first_name": "Mallory",
			"email":      "mallory@example.com",
			"password":   password,
		}, &e.alice)
		w := httptest.NewRecorder()

		e.users.Create(w, req)

		expectError(t, w, http.StatusUnauthorized, "Unauthorized.")
	})

	tests := []struct {
		name       string
		method     string
		id         string
		body       any
		wantStatus int
		wantMsg    string
	}{
		{"get user", http.MethodGet, e.alice.ID, nil, http.StatusOK, ""},
		{"get missing", http.MethodGet, "missing", nil, http.StatusNotFound, "User not exists."},
		{"edit user", http.MethodPut, e.alice.ID, map[string]string{"first_name": "Alicia"}, http.StatusOK, "User edited successfully."},
		{"edit admin", http.MethodPut, e.admin.ID, map[string]string{"first_name": "Boss"}, http.StatusBadRequest, "Provided user is admin user."},
		{"edit without name", http.MethodPut, e.alice.ID, map[string]string{"last_name": "Only"}, http.StatusBadRequest, "first_name is required"},
		{"delete admin", http.MethodDelete, e.admin.ID, nil, http.StatusBadRequest, "Provided user is admin user."},
		{"delete user", http.MethodDelete, e.bob.ID, nil, http.StatusOK, "User deleted successfully."},
		{"delete again", http.MethodDelete, e.bob.ID, nil, http.StatusNotFound, "User not exists."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(t, tt.method, "/api/v1/users/"+tt.id, tt.body, &e.admin)
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()

			switch tt.method {
			case http.MethodGet:
				e.users.Get(w, req)
			case http.MethodPut:
				e.users.Edit(w, req)
			case http.MethodDelete:
				e.users.Delete(w, req)
			}

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			env := decode(t, w)
			if env.Success != (tt.wantStatus == http.StatusOK) {
				t.Errorf("unexpected success=%v", env.Success)
			}
			if env.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, env.Message)
			}
		})
	}
}

func TestUserHandler_InternalError(t *testing.T) {
	users := handler.NewUserHandler(service.NewUserService(failingUserRepo{err: sql.ErrConnDone}, auth.NewPasswordHasher(4)))
	caller := model.Caller{ID: "u-1", Role: model.RoleUser}

	req := newRequest(t, http.MethodGet, "/api/v1/users", nil, &caller)
	w := httptest.NewRecorder()

	users.List(w, req)

	expectError(t, w, http.StatusInternalServerError, "Internal server error.")
}
