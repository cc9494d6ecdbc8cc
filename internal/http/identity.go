package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jaekwang-park/taskboard-api/internal/middleware"
	"github.com/jaekwang-park/taskboard-api/internal/model"
	"github.com/jaekwang-park/taskboard-api/internal/repository"
)

// IdentityResolver looks token subjects up in the user store so the guard
// sees the stored role.
type IdentityResolver struct {
	users repository.UserRepository
}

func NewIdentityResolver(users repository.UserRepository) *IdentityResolver {
	return &IdentityResolver{users: users}
}

func (r *IdentityResolver) ResolveIdentity(ctx context.Context, id string) (model.Caller, error) {
	user, err := r.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Caller{}, middleware.ErrUserNotFound
		}
		return model.Caller{}, fmt.Errorf("failed to get user: %w", err)
	}
	return model.Caller{ID: user.ID, Role: user.Role}, nil
}
