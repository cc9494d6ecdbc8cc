package repository

import (
	"context"

	"github.com/jaekwang-park/taskboard-api/internal/model"
	"github.com/jaekwang-park/taskboard-api/internal/query"
)

// TaskRepository stores tasks. Reads are always filtered by a query.Scope;
// writes are keyed by a task id the caller has already fetched under one.
// Missing or out-of-scope records are reported as sql.ErrNoRows.
type TaskRepository interface {
	Create(ctx context.Context, task model.Task) (model.Task, error)
	Get(ctx context.Context, scope query.Scope, id string) (model.Task, error)
	Update(ctx context.Context, task model.Task) (model.Task, error)
	Delete(ctx context.Context, id string) error
	// List evaluates normalized params and resolves creator and assignee
	// summaries for the returned page.
	List(ctx context.Context, params query.Params) (query.Page[model.TaskDetail], error)
}
