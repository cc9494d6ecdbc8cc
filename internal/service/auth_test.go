package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jaekwang-park/taskboard-api/internal/auth"
	"github.com/jaekwang-park/taskboard-api/internal/model"
	"github.com/jaekwang-park/taskboard-api/internal/repository"
	"github.com/jaekwang-park/taskboard-api/internal/service"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	tokens, _ := auth.NewTokenManager(auth.TokenConfig{Secret: "test-secret"})

	tests := []struct {
		name    string
		input   service.LoginInput
		wantErr error
	}{
		{"success", service.LoginInput{Email: "a@example.com", Password: password}, nil},
		{"email is case-insensitive", service.LoginInput{Email: "  A@Example.COM ", Password: password}, nil},
		{"unknown email", service.LoginInput{Email: "nobody@example.com", Password: password}, service.ErrEmailNotRegistered},
		{"wrong password", service.LoginInput{Email: "a@example.com", Password: "wrong-password"}, service.ErrInvalidCredentials},
		{"missing email", service.LoginInput{Password: password}, service.ErrInvalidInput},
		{"missing password", service.LoginInput{Email: "a@example.com"}, service.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := f.auth.Login(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.User.ID != f.a.ID {
				t.Errorf("expected user %s, got %s", f.a.ID, out.User.ID)
			}
			caller, err := tokens.Verify(out.Token)
			if err != nil {
				t.Fatalf("issued token does not verify: %v", err)
			}
			if caller.ID != f.a.ID || caller.Role != model.RoleUser {
				t.Errorf("unexpected token identity %+v", caller)
			}
		})
	}
}

func TestLogin_RepositoryError(t *testing.T) {
	repo := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (model.User, error) {
			return model.User{}, errors.New("connection refused")
		},
	}
	svc := service.NewAuthService(repo, hasher, nil, false)

	_, err := svc.Login(context.Background(), service.LoginInput{Email: "a@example.com", Password: password})
	if err == nil || errors.Is(err, service.ErrEmailNotRegistered) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name       string
		allowAdmin bool
		input      service.SignupInput
		wantErr    error
		wantRole   model.Role
	}{
		{
			name:     "defaults to user role",
			input:    service.SignupInput{FirstName: "Ann", Email: "Ann@Example.com", Password: password},
			wantRole: model.RoleUser,
		},
		{
			name:    "admin role rejected by default",
			input:   service.SignupInput{FirstName: "Ann", Email: "ann@example.com", Password: password, Role: model.RoleAdmin},
			wantErr: service.ErrInvalidInput,
		},
		{
			name:       "admin role allowed when enabled",
			allowAdmin: true,
			input:      service.SignupInput{FirstName: "Ann", Email: "ann@example.com", Password: password, Role: model.RoleAdmin},
			wantRole:   model.RoleAdmin,
		},
		{
			name:    "unknown role",
			input:   service.SignupInput{FirstName: "Ann", Email: "ann@example.com", Password: password, Role: "owner"},
			wantErr: service.ErrInvalidInput,
		},
		{
			name:    "missing first name",
			input:   service.SignupInput{Email: "ann@example.com", Password: password},
			wantErr: service.ErrInvalidInput,
		},
		{
			name:    "invalid email",
			input:   service.SignupInput{FirstName: "Ann", Email: "not-an-email", Password: password},
			wantErr: service.ErrInvalidInput,
		},
		{
			name:    "short password",
			input:   service.SignupInput{FirstName: "Ann", Email: "ann@example.com", Password: "short"},
			wantErr: service.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := repository.NewMemoryStore()
			svc := service.NewAuthService(store.Users(), hasher, nil, tt.allowAdmin)

			user, err := svc.Signup(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.Role != tt.wantRole {
				t.Errorf("expected role %s, got %s", tt.wantRole, user.Role)
			}
			if user.Email != "ann@example.com" {
				t.Errorf("expected lower-cased email, got %s", user.Email)
			}
			if user.PasswordHash == "" || user.PasswordHash == password {
				t.Error("expected password to be stored hashed")
			}
			if user.ID == "" {
				t.Error("expected an id to be assigned")
			}
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Signup(context.Background(), service.SignupInput{
		FirstName: "Again",
		Email:     "A@EXAMPLE.COM",
		Password:  password,
	})
	if !errors.Is(err, service.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestSignup_RepositoryError(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user model.User) (model.User, error) {
			return model.User{}, sql.ErrConnDone
		},
	}
	svc := service.NewAuthService(repo, hasher, nil, false)

	_, err := svc.Signup(context.Background(), service.SignupInput{FirstName: "Ann", Email: "ann@example.com", Password: password})
	if !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("expected wrapped sql.ErrConnDone, got %v", err)
	}
}
