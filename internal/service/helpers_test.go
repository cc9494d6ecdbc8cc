package service_test

import (
	"context"
	"testing"

	"github.com/jaekwang-park/taskboard-api/internal/auth"
	"github.com/jaekwang-park/taskboard-api/internal/model"
	"github.com/jaekwang-park/taskboard-api/internal/query"
	"github.com/jaekwang-park/taskboard-api/internal/repository"
	"github.com/jaekwang-park/taskboard-api/internal/service"
)

// mockUserRepo implements repository.UserRepository for error-path tests.
type mockUserRepo struct {
	createFn     func(ctx context.Context, user model.User) (model.User, error)
	getByIDFn    func(ctx context.Context, id string) (model.User, error)
	getByEmailFn func(ctx context.Context, email string) (model.User, error)
	updateFn     func(ctx context.Context, user model.User) (model.User, error)
	deleteFn     func(ctx context.Context, id string) error
	listFn       func(ctx context.Context, params model.UserListParams) (query.Page[model.User], error)
}

func (m *mockUserRepo) Create(ctx context.Context, user model.User) (model.User, error) {
	return m.createFn(ctx, user)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return m.getByIDFn(ctx, id)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return m.getByEmailFn(ctx, email)
}
func (m *mockUserRepo) Update(ctx context.Context, user model.User) (model.User, error) {
	return m.updateFn(ctx, user)
}
func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}
func (m *mockUserRepo) List(ctx context.Context, params model.UserListParams) (query.Page[model.User], error) {
	return m.listFn(ctx, params)
}

var hasher = auth.NewPasswordHasher(4)

const password = "correct-horse"

// fixture is a memory-backed set of services with three regular users and
// one admin already registered.
type fixture struct {
	store *repository.MemoryStore
	users *service.UserService
	auth  *service.AuthService

	admin, a, b, c model.Caller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := repository.NewMemoryStore()
	tokens, err := auth.NewTokenManager(auth.TokenConfig{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	f := &fixture{
		store: store,
		users: service.NewUserService(store.Users(), hasher),
		auth:  service.NewAuthService(store.Users(), hasher, tokens, false),
	}

	admin, _, err := f.users.EnsureAdmin(context.Background(), "root@example.com", password, "Root")
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	f.admin = model.Caller{ID: admin.ID, Role: admin.Role}

	for _, dst := range []struct {
		caller *model.Caller
		email  string
	}{
		{&f.a, "a@example.com"},
		{&f.b, "b@example.com"},
		{&f.c, "c@example.com"},
	} {
		u, err := f.auth.Signup(context.Background(), service.SignupInput{
			FirstName: "User",
			Email:     dst.email,
			Password:  password,
		})
		if err != nil {
			t.Fatalf("Signup(%s): %v", dst.email, err)
		}
		*dst.caller = model.Caller{ID: u.ID, Role: u.Role}
	}
	return f
}
