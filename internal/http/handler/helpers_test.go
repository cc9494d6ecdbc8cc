package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jaekwang-park/taskboard-api/internal/auth"
	"github.com/jaekwang-park/taskboard-api/internal/http/handler"
	"github.com/jaekwang-park/taskboard-api/internal/middleware"
	"github.com/jaekwang-park/taskboard-api/internal/model"
	"github.com/jaekwang-park/taskboard-api/internal/query"
	"github.com/jaekwang-park/taskboard-api/internal/repository"
	"github.com/jaekwang-park/taskboard-api/internal/service"
)

const password = "correct-horse"

// env wires the handlers to memory-backed services with one admin and two
// regular users registered.
type env struct {
	store *repository.MemoryStore
	auth  *handler.AuthHandler
	tasks *handler.TaskHandler
	users *handler.UserHandler

	admin, alice, bob model.Caller
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := repository.NewMemoryStore()
	hasher := auth.NewPasswordHasher(4)
	tokens, err := auth.NewTokenManager(auth.TokenConfig{Secret: "handler-secret"})
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	authSvc := service.NewAuthService(store.Users(), hasher, tokens, false)
	userSvc := service.NewUserService(store.Users(), hasher)

	e := &env{
		store: store,
		auth:  handler.NewAuthHandler(authSvc),
		tasks: handler.NewTaskHandler(service.NewTaskService(store.Tasks(), store.Users())),
		users: handler.NewUserHandler(userSvc),
	}

	admin, _, err := userSvc.EnsureAdmin(context.Background(), "root@example.com", password, "Root")
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	e.admin = model.Caller{ID: admin.ID, Role: admin.Role}

	for _, dst := range []struct {
		caller *model.Caller
		name   string
		email  string
	}{
		{&e.alice, "Alice", "alice@example.com"},
		{&e.bob, "Bob", "bob@example.com"},
	} {
		u, err := authSvc.Signup(context.Background(), service.SignupInput{
			FirstName: dst.name,
			Email:     dst.email,
			Password:  password,
		})
		if err != nil {
			t.Fatalf("Signup(%s): %v", dst.email, err)
		}
		*dst.caller = model.Caller{ID: u.ID, Role: u.Role}
	}
	return e
}

// newRequest builds a request as the guard would hand it to a handler.
func newRequest(t *testing.T, method, target string, body any, caller *model.Caller) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	if caller != nil {
		req = req.WithContext(middleware.SetCaller(req.Context(), *caller))
	}
	return req
}

type envelope struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Data        json.RawMessage `json:"data"`
	Token       string          `json:"token"`
	CurrentPage *int            `json:"current_page"`
	TotalPages  *int            `json:"total_pages"`
	Limit       *int            `json:"limit"`
	Total       *int            `json:"total"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if w.Code != status {
		t.Errorf("expected status %d, got %d", status, w.Code)
	}
	env := decode(t, w)
	if env.Success {
		t.Error("expected success=false")
	}
	if env.Message != message {
		t.Errorf("expected message %q, got %q", message, env.Message)
	}
}

// failingUserRepo fails every call with err.
type failingUserRepo struct {
	err error
}

func (f failingUserRepo) Create(context.Context, model.User) (model.User, error) {
	return model.User{}, f.err
}
func (f failingUserRepo) GetByID(context.Context, string) (model.User, error) {
	return model.User{}, f.err
}
func (f failingUserRepo) GetByEmail(context.Context, string) (model.User, error) {
	return model.User{}, f.err
}
func (f failingUserRepo) Update(context.Context, model.User) (model.User, error) {
	return model.User{}, f.err
}
func (f failingUserRepo) Delete(context.Context, string) error {
	return f.err
}
func (f failingUserRepo) List(context.Context, model.UserListParams) (query.Page[model.User], error) {
	return query.Page[model.User]{}, f.err
}
