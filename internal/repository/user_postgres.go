package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jaekwang-park/taskboard-api/internal/model"
	"github.com/jaekwang-park/taskboard-api/internal/query"
)

const userColumns = `id, first_name, last_name, email, password_hash, role, created_at, updated_at`

type userRow struct {
	ID           string    `db:"id"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toModel() model.User {
	return model.User{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         model.Role(r.Role),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type PostgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUser(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	stmt := `
		INSERT INTO users (id, first_name, last_name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns

	var row userRow
	err := r.db.GetContext(ctx, &row, stmt,
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash,
		string(user.Role), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return row.toModel(), nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (model.User, error) {
	if !validID(id) {
		return model.User{}, sql.ErrNoRows
	}

	var row userRow
	err := r.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return model.User{}, wrapNotFound("failed to get user", err)
	}
	return row.toModel(), nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	if err != nil {
		return model.User{}, wrapNotFound("failed to get user by email", err)
	}
	return row.toModel(), nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, user model.User) (model.User, error) {
	if !validID(user.ID) {
		return model.User{}, sql.ErrNoRows
	}

	stmt := `
		UPDATE users
		SET first_name = $1, last_name = $2, updated_at = $3
		WHERE id = $4
		RETURNING ` + userColumns

	var row userRow
	err := r.db.GetContext(ctx, &row, stmt, user.FirstName, user.LastName, user.UpdatedAt, user.ID)
	if err != nil {
		return model.User{}, wrapNotFound("failed to update user", err)
	}
	return row.toModel(), nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return sql.ErrNoRows
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireAffected(result)
}

func (r *PostgresUserRepository) List(ctx context.Context, params model.UserListParams) (query.Page[model.User], error) {
	where := "TRUE"
	var args []any
	if params.Search != "" {
		where = `email ILIKE $1 ESCAPE '\'`
		args = append(args, query.LikePattern(params.Search))
	}

	var (
		total int
		rows  []userRow
	)
	err := readSnapshot(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &total, `SELECT COUNT(*) FROM users WHERE `+where, args...); err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		n := len(args)
		stmt := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC, id ASC LIMIT $%d OFFSET $%d`,
			userColumns, where, n+1, n+2)
		if err := tx.SelectContext(ctx, &rows, stmt, append(args, params.Limit, (params.Page-1)*params.Limit)...); err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		return nil
	})
	if err != nil {
		return query.Page[model.User]{}, err
	}

	users := make([]model.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toModel())
	}
	return query.NewPage(users, total, params.Page, params.Limit), nil
}

// readSnapshot runs fn in a read-only REPEATABLE READ transaction so that a
// count and the page it describes observe the same data.
func readSnapshot(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// wrapNotFound passes sql.ErrNoRows through untouched and wraps anything else.
func wrapNotFound(msg string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sql.ErrNoRows
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func requireAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
