package repository

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"sync"

	"github.com/jaekwang-park/taskboard-api/internal/model"
	"github.com/jaekwang-park/taskboard-api/internal/query"
)

// MemoryStore keeps users and tasks in process. It evaluates list requests
// with query.Params.Match and Less, so it returns the same pages as the
// PostgreSQL store for the same data.
type MemoryStore struct {
	mu    sync.RWMutex
	users []model.User
	tasks []model.Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Users() *MemoryUserRepository {
	return &MemoryUserRepository{s: s}
}

func (s *MemoryStore) Tasks() *MemoryTaskRepository {
	return &MemoryTaskRepository{s: s}
}

// Slices are kept in insertion order; lookups are linear.

func (s *MemoryStore) userIndex(id string) int {
	return slices.IndexFunc(s.users, func(u model.User) bool { return u.ID == id })
}

func (s *MemoryStore) taskIndex(id string) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
}

func (s *MemoryStore) summary(id string) *model.UserSummary {
	i := s.userIndex(id)
	if i < 0 {
		return nil
	}
	summary := s.users[i].Summary()
	return &summary
}

type MemoryUserRepository struct {
	s *MemoryStore
}

func (r *MemoryUserRepository) Create(_ context.Context, user model.User) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return model.User{}, ErrDuplicateEmail
		}
	}
	r.s.users = append(r.s.users, user)
	return user, nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := r.s.userIndex(id)
	if i < 0 {
		return model.User{}, sql.ErrNoRows
	}
	return r.s.users[i], nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (r *MemoryUserRepository) Update(_ context.Context, user model.User) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.userIndex(user.ID)
	if i < 0 {
		return model.User{}, sql.ErrNoRows
	}
	stored := &r.s.users[i]
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.UpdatedAt = user.UpdatedAt
	return *stored, nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.userIndex(id)
	if i < 0 {
		return sql.ErrNoRows
	}
	r.s.users = slices.Delete(r.s.users, i, i+1)
	return nil
}

func (r *MemoryUserRepository) List(_ context.Context, params model.UserListParams) (query.Page[model.User], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(params.Search)
	var matched []model.User
	for _, u := range r.s.users {
		if search == "" || strings.Contains(strings.ToLower(u.Email), search) {
			matched = append(matched, u)
		}
	}
	slices.SortStableFunc(matched, func(a, b model.User) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	start, end := query.Window(len(matched), params.Page, params.Limit)
	items := slices.Clone(matched[start:end])
	return query.NewPage(items, len(matched), params.Page, params.Limit), nil
}

type MemoryTaskRepository struct {
	s *MemoryStore
}

func (r *MemoryTaskRepository) Create(_ context.Context, task model.Task) (model.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.tasks = append(r.s.tasks, task)
	return task, nil
}

func (r *MemoryTaskRepository) Get(_ context.Context, scope query.Scope, id string) (model.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := r.s.taskIndex(id)
	if i < 0 || !scope.Allows(r.s.tasks[i]) {
		return model.Task{}, sql.ErrNoRows
	}
	return r.s.tasks[i], nil
}

func (r *MemoryTaskRepository) Update(_ context.Context, task model.Task) (model.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.taskIndex(task.ID)
	if i < 0 {
		return model.Task{}, sql.ErrNoRows
	}
	// Ownership and creation time are immutable.
	stored := r.s.tasks[i]
	task.AssignedBy = stored.AssignedBy
	task.AssignedTo = stored.AssignedTo
	task.CreatedAt = stored.CreatedAt
	r.s.tasks[i] = task
	return task, nil
}

func (r *MemoryTaskRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.taskIndex(id)
	if i < 0 {
		return sql.ErrNoRows
	}
	r.s.tasks = slices.Delete(r.s.tasks, i, i+1)
	return nil
}

func (r *MemoryTaskRepository) List(_ context.Context, params query.Params) (query.Page[model.TaskDetail], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []model.Task
	for _, t := range r.s.tasks {
		if params.Match(t) {
			matched = append(matched, t)
		}
	}
	slices.SortStableFunc(matched, func(a, b model.Task) int {
		switch {
		case params.Less(a, b):
			return -1
		case params.Less(b, a):
			return 1
		}
		return 0
	})

	start, end := query.Window(len(matched), params.Page, params.Limit)
	details := make([]model.TaskDetail, 0, end-start)
	for _, t := range matched[start:end] {
		details = append(details, model.TaskDetail{
			Task:     t,
			Creator:  r.s.summary(t.AssignedBy),
			Assignee: r.s.summary(t.AssignedTo),
		})
	}
	return query.NewPage(details, len(matched), params.Page, params.Limit), nil
}

var (
	_ UserRepository = (*MemoryUserRepository)(nil)
	_ TaskRepository = (*MemoryTaskRepository)(nil)
)
