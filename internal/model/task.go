package model

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// Priority runs from 1 (low) to 4 (urgent).
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
	PriorityUrgent Priority = 4
)

func (p Priority) IsValid() bool {
	return p >= PriorityLow && p <= PriorityUrgent
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     time.Time  `json:"due_date"`
	AssignedBy  string     `json:"assigned_by"`
	AssignedTo  string     `json:"assigned_to"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskDetail is a task with its creator and assignee resolved. A reference
// that no longer resolves is left nil.
type TaskDetail struct {
	Task
	Creator  *UserSummary `json:"assigned_by"`
	Assignee *UserSummary `json:"assigned_to"`
}
