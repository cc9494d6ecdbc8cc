package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jaekwang-park/taskboard-api/internal/model"
	"github.com/jaekwang-park/taskboard-api/internal/query"
)

const taskColumns = `t.id, t.title, t.description, t.status, t.priority, t.due_date,
	t.assigned_by, t.assigned_to, t.completed_at, t.created_at, t.updated_at`

type taskRow struct {
	ID          string       `db:"id"`
	Title       string       `db:"title"`
	Description string       `db:"description"`
	Status      string       `db:"status"`
	Priority    int          `db:"priority"`
	DueDate     time.Time    `db:"due_date"`
	AssignedBy  string       `db:"assigned_by"`
	AssignedTo  string       `db:"assigned_to"`
	CompletedAt sql.NullTime `db:"completed_at"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

func (r taskRow) toModel() model.Task {
	t := model.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      model.TaskStatus(r.Status),
		Priority:    model.Priority(r.Priority),
		DueDate:     r.DueDate,
		AssignedBy:  r.AssignedBy,
		AssignedTo:  r.AssignedTo,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.CompletedAt.Valid {
		completed := r.CompletedAt.Time
		t.CompletedAt = &completed
	}
	return t
}

// summaryRow is one side of a LEFT JOIN against users; every column is null
// when the reference no longer resolves.
type summaryRow struct {
	ID        sql.NullString `db:"id"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
	Email     sql.NullString `db:"email"`
	Role      sql.NullString `db:"role"`
}

func (r summaryRow) toModel() *model.UserSummary {
	if !r.ID.Valid {
		return nil
	}
	return &model.UserSummary{
		ID:        r.ID.String,
		FirstName: r.FirstName.String,
		LastName:  r.LastName.String,
		Email:     r.Email.String,
		Role:      model.Role(r.Role.String),
	}
}

type taskDetailRow struct {
	taskRow
	Creator  summaryRow `db:"creator"`
	Assignee summaryRow `db:"assignee"`
}

type PostgresTaskRepository struct {
	db *sqlx.DB
}

func NewPostgresTask(db *sqlx.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

func (r *PostgresTaskRepository) Create(ctx context.Context, task model.Task) (model.Task, error) {
	stmt := `
		INSERT INTO tasks AS t (id, title, description, status, priority, due_date,
			assigned_by, assigned_to, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + taskColumns

	var row taskRow
	err := r.db.GetContext(ctx, &row, stmt,
		task.ID, task.Title, task.Description, string(task.Status), int(task.Priority), task.DueDate,
		task.AssignedBy, task.AssignedTo, task.CompletedAt, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return row.toModel(), nil
}

func (r *PostgresTaskRepository) Get(ctx context.Context, scope query.Scope, id string) (model.Task, error) {
	if !validID(id) {
		return model.Task{}, sql.ErrNoRows
	}

	// Scope goes through the same compiler as List so a single-task read can
	// never see more than a listing would.
	where := query.Compile(query.Params{Scope: scope})
	stmt := fmt.Sprintf(`SELECT %s FROM tasks t WHERE %s AND t.id = $%d`,
		taskColumns, where.Where, where.NextArg())

	var row taskRow
	if err := r.db.GetContext(ctx, &row, stmt, append(where.Args, id)...); err != nil {
		return model.Task{}, wrapNotFound("failed to get task", err)
	}
	return row.toModel(), nil
}

func (r *PostgresTaskRepository) Update(ctx context.Context, task model.Task) (model.Task, error) {
	if !validID(task.ID) {
		return model.Task{}, sql.ErrNoRows
	}

	stmt := `
		UPDATE tasks AS t
		SET title = $1, description = $2, status = $3, priority = $4, due_date = $5,
			completed_at = $6, updated_at = $7
		WHERE t.id = $8
		RETURNING ` + taskColumns

	var row taskRow
	err := r.db.GetContext(ctx, &row, stmt,
		task.Title, task.Description, string(task.Status), int(task.Priority), task.DueDate,
		task.CompletedAt, task.UpdatedAt, task.ID,
	)
	if err != nil {
		return model.Task{}, wrapNotFound("failed to update task", err)
	}
	return row.toModel(), nil
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return sql.ErrNoRows
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return requireAffected(result)
}

func (r *PostgresTaskRepository) List(ctx context.Context, params query.Params) (query.Page[model.TaskDetail], error) {
	where := query.Compile(params)

	countStmt := `SELECT COUNT(*) FROM tasks t WHERE ` + where.Where
	pageStmt := fmt.Sprintf(`
		SELECT %s,
			c.id AS "creator.id", c.first_name AS "creator.first_name", c.last_name AS "creator.last_name",
			c.email AS "creator.email", c.role AS "creator.role",
			a.id AS "assignee.id", a.first_name AS "assignee.first_name", a.last_name AS "assignee.last_name",
			a.email AS "assignee.email", a.role AS "assignee.role"
		FROM tasks t
		LEFT JOIN users c ON c.id = t.assigned_by
		LEFT JOIN users a ON a.id = t.assigned_to
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		taskColumns, where.Where, where.OrderBy, where.NextArg(), where.NextArg()+1)

	var (
		total int
		rows  []taskDetailRow
	)
	err := readSnapshot(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &total, countStmt, where.Args...); err != nil {
			return fmt.Errorf("failed to count tasks: %w", err)
		}
		args := append(append([]any{}, where.Args...), params.Limit, params.Offset())
		if err := tx.SelectContext(ctx, &rows, pageStmt, args...); err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return query.Page[model.TaskDetail]{}, err
	}

	details := make([]model.TaskDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, model.TaskDetail{
			Task:     row.taskRow.toModel(),
			Creator:  row.Creator.toModel(),
			Assignee: row.Assignee.toModel(),
		})
	}
	return query.NewPage(details, total, params.Page, params.Limit), nil
}

var _ TaskRepository = (*PostgresTaskRepository)(nil)
