package repository

import (
	"context"
	"errors"

	"github.com/jaekwang-park/taskboard-api/internal/model"
	"github.com/jaekwang-park/taskboard-api/internal/query"
)

// ErrDuplicateEmail is returned when an email is already registered,
// compared case-insensitively.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository stores identities. Missing records are reported as
// sql.ErrNoRows.
type UserRepository interface {
	Create(ctx context.Context, user model.User) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Update(ctx context.Context, user model.User) (model.User, error)
	Delete(ctx context.Context, id string) error
	// List matches params.Search against email and returns newest first.
	// params must already carry a positive Page and Limit.
	List(ctx context.Context, params model.UserListParams) (query.Page[model.User], error)
}
