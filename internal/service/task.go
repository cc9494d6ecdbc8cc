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

type CreateTaskInput struct {
	Title       string
	Description string
	Priority    model.Priority
	DueDate     time.Time
	AssignedTo  string
}

// UpdateTaskInput is a patch; nil fields are left unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *model.TaskStatus
	Priority    *model.Priority
	DueDate     *time.Time
}

type TaskService struct {
	tasks repository.TaskRepository
	users repository.UserRepository
	now   func() time.Time
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository) *TaskService {
	return &TaskService{tasks: tasks, users: users, now: time.Now}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	c := *s
	c.now = now
	return &c
}

func (s *TaskService) Create(ctx context.Context, caller model.Caller, input CreateTaskInput) (model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return model.Task{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	priority := input.Priority
	if priority == 0 {
		priority = model.PriorityLow
	}
	if !priority.IsValid() {
		return model.Task{}, fmt.Errorf("%w: priority must be between 1 and 4", ErrInvalidInput)
	}
	if input.DueDate.IsZero() {
		return model.Task{}, fmt.Errorf("%w: due_date is required", ErrInvalidInput)
	}
	if input.AssignedTo == "" {
		return model.Task{}, fmt.Errorf("%w: assigned_to is required", ErrInvalidInput)
	}

	if _, err := s.users.GetByID(ctx, input.AssignedTo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrInvalidAssignee
		}
		return model.Task{}, fmt.Errorf("failed to get assignee: %w", err)
	}

	now := s.now()
	if input.DueDate.Before(now) {
		return model.Task{}, ErrPastDueDate
	}

	created, err := s.tasks.Create(ctx, model.Task{
		ID:          newID(),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      model.TaskStatusPending,
		Priority:    priority,
		DueDate:     input.DueDate,
		AssignedBy:  caller.ID,
		AssignedTo:  input.AssignedTo,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return created, nil
}

// Get returns ErrNotFound both for missing tasks and for tasks outside the
// caller's scope.
func (s *TaskService) Get(ctx context.Context, caller model.Caller, id string) (model.Task, error) {
	task, err := s.tasks.Get(ctx, query.ScopeFor(caller), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, caller model.Caller, params query.Params) (query.Page[model.TaskDetail], error) {
	params.Scope = query.ScopeFor(caller)
	params, err := params.Normalize()
	if err != nil {
		return query.Page[model.TaskDetail]{}, fmt.Errorf("%w: %s", ErrInvalidInput, strings.TrimPrefix(err.Error(), query.ErrInvalidParams.Error()+": "))
	}

	page, err := s.tasks.List(ctx, params)
	if err != nil {
		return query.Page[model.TaskDetail]{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	if page.Total == 0 {
		return query.Page[model.TaskDetail]{}, ErrNoResults
	}
	return page, nil
}

func (s *TaskService) Update(ctx context.Context, caller model.Caller, id string, input UpdateTaskInput) (model.Task, error) {
	existing, err := s.Get(ctx, caller, id)
	if err != nil {
		return model.Task{}, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return model.Task{}, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		existing.Title = title
	}
	if input.Description != nil {
		existing.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return model.Task{}, fmt.Errorf("%w: priority must be between 1 and 4", ErrInvalidInput)
		}
		existing.Priority = *input.Priority
	}
	if input.DueDate != nil {
		if input.DueDate.IsZero() {
			return model.Task{}, fmt.Errorf("%w: due_date cannot be empty", ErrInvalidInput)
		}
		existing.DueDate = *input.DueDate
	}

	now := s.now()
	if input.Status != nil {
		if !input.Status.IsValid() {
			return model.Task{}, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, *input.Status)
		}
		switch {
		case *input.Status == model.TaskStatusCompleted && existing.Status != model.TaskStatusCompleted:
			existing.CompletedAt = &now
		case *input.Status != model.TaskStatusCompleted:
			existing.CompletedAt = nil
		}
		existing.Status = *input.Status
	}
	existing.UpdatedAt = now

	// existing.ID came from the scoped read above; it is the only key used.
	updated, err := s.tasks.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, caller model.Caller, id string) error {
	existing, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, existing.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
