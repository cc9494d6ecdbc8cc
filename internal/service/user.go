package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jaekwang-park/taskboard-api/internal/model"
	"github.com/jaekwang-park/taskboard-api/internal/query"
	"github.com/jaekwang-park/taskboard-api/internal/repository"
)

// UserService manages identities on behalf of an authenticated caller.
// Everything except List requires an admin caller.
type UserService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	now    func() time.Time
}

func NewUserService(users repository.UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher, now: time.Now}
}

type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type EditUserInput struct {
	FirstName string
	LastName  string
}

func (s *UserService) List(ctx context.Context, params model.UserListParams) (query.Page[model.User], error) {
	params.Search = strings.TrimSpace(params.Search)
	if params.Page == 0 {
		params.Page = query.DefaultPage
	}
	if params.Limit == 0 {
		params.Limit = query.DefaultLimit
	}
	if params.Page < 1 {
		return query.Page[model.User]{}, fmt.Errorf("%w: page must be at least 1", ErrInvalidInput)
	}
	if params.Limit < 1 || params.Limit > query.MaxLimit {
		return query.Page[model.User]{}, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, query.MaxLimit)
	}
	if !query.OffsetFits(params.Page, params.Limit) {
		return query.Page[model.User]{}, fmt.Errorf("%w: page is too large", ErrInvalidInput)
	}

	page, err := s.users.List(ctx, params)
	if err != nil {
		return query.Page[model.User]{}, fmt.Errorf("failed to list users: %w", err)
	}
	return page, nil
}

// Create registers a regular user. Admin identities are only created through
// signup (when enabled) or EnsureAdmin.
func (s *UserService) Create(ctx context.Context, caller model.Caller, input CreateUserInput) (model.User, error) {
	if !caller.IsAdmin() {
		return model.User{}, ErrForbidden
	}
	return registerUser(ctx, s.users, s.hasher, s.now(), SignupInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  input.Password,
	}, model.RoleUser)
}

func (s *UserService) Get(ctx context.Context, caller model.Caller, id string) (model.User, error) {
	if !caller.IsAdmin() {
		return model.User{}, ErrForbidden
	}
	return s.get(ctx, id)
}

func (s *UserService) Edit(ctx context.Context, caller model.Caller, id string, input EditUserInput) (model.User, error) {
	if !caller.IsAdmin() {
		return model.User{}, ErrForbidden
	}

	firstName := strings.TrimSpace(input.FirstName)
	if firstName == "" {
		return model.User{}, fmt.Errorf("%w: first_name is required", ErrInvalidInput)
	}

	existing, err := s.get(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if existing.Role == model.RoleAdmin {
		return model.User{}, ErrProtectedUser
	}

	existing.FirstName = firstName
	existing.LastName = strings.TrimSpace(input.LastName)
	existing.UpdatedAt = s.now()

	updated, err := s.users.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, caller model.Caller, id string) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}

	existing, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if existing.Role == model.RoleAdmin {
		return ErrProtectedUser
	}

	if err := s.users.Delete(ctx, existing.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// EnsureAdmin creates an admin identity unless one with the same email
// already exists. created reports whether a new identity was stored.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password, firstName string) (user model.User, created bool, err error) {
	existing, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	switch {
	case err == nil:
		if existing.Role != model.RoleAdmin {
			return model.User{}, false, fmt.Errorf("%w: %s is registered as a regular user", ErrConflict, existing.Email)
		}
		return existing, false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return model.User{}, false, fmt.Errorf("failed to get user: %w", err)
	}

	if firstName == "" {
		firstName = "Admin"
	}
	user, err = registerUser(ctx, s.users, s.hasher, s.now(), SignupInput{
		FirstName: firstName,
		Email:     email,
		Password:  password,
	}, model.RoleAdmin)
	if err != nil {
		return model.User{}, false, err
	}
	return user, true, nil
}

func (s *UserService) get(ctx context.Context, id string) (model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
