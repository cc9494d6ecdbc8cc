package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jaekwang-park/taskboard-api/internal/model"
	"github.com/jaekwang-park/taskboard-api/internal/repository"
)

// PasswordHasher is satisfied by *auth.PasswordHasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer is satisfied by *auth.TokenManager.
type TokenIssuer interface {
	Issue(subjectID string, role model.Role) (string, error)
}

// AuthService handles login and self-service signup.
type AuthService struct {
	users            repository.UserRepository
	hasher           PasswordHasher
	tokens           TokenIssuer
	allowAdminSignup bool
	now              func() time.Time
}

func NewAuthService(users repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, allowAdminSignup bool) *AuthService {
	return &AuthService{
		users:            users,
		hasher:           hasher,
		tokens:           tokens,
		allowAdminSignup: allowAdminSignup,
		now:              time.Now,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	User  model.User
	Token string
}

type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      model.Role
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginOutput, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return LoginOutput{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if input.Password == "" {
		return LoginOutput{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LoginOutput{}, ErrEmailNotRegistered
		}
		return LoginOutput{}, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return LoginOutput{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return LoginOutput{}, fmt.Errorf("failed to issue token: %w", err)
	}

	return LoginOutput{User: user, Token: token}, nil
}

// Signup registers a new identity. An admin role is only accepted when the
// service was built with allowAdminSignup.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (model.User, error) {
	role := input.Role
	if role == "" {
		role = model.RoleUser
	}
	if !role.IsValid() {
		return model.User{}, fmt.Errorf("%w: role must be user or admin", ErrInvalidInput)
	}
	if role == model.RoleAdmin && !s.allowAdminSignup {
		return model.User{}, fmt.Errorf("%w: admin signup is disabled", ErrInvalidInput)
	}

	return registerUser(ctx, s.users, s.hasher, s.now(), input, role)
}

const (
	minPasswordLen = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLen = 72
)

func registerUser(ctx context.Context, users repository.UserRepository, hasher PasswordHasher, now time.Time, input SignupInput, role model.Role) (model.User, error) {
	firstName := strings.TrimSpace(input.FirstName)
	if firstName == "" {
		return model.User{}, fmt.Errorf("%w: first_name is required", ErrInvalidInput)
	}
	email := normalizeEmail(input.Email)
	if !validEmail(email) {
		return model.User{}, fmt.Errorf("%w: email must be a valid email address", ErrInvalidInput)
	}
	if len(input.Password) < minPasswordLen {
		return model.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	if len(input.Password) > maxPasswordLen {
		return model.User{}, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordLen)
	}

	hash, err := hasher.Hash(input.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := users.Create(ctx, model.User{
		ID:           newID(),
		FirstName:    firstName,
		LastName:     strings.TrimSpace(input.LastName),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.User{}, ErrConflict
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}
