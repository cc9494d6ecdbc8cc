package model_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jaekwang-park/taskboard-api/internal/model"
)

func TestTaskStatus_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		status model.TaskStatus
		want   bool
	}{
		{"pending", model.TaskStatusPending, true},
		{"in_progress", model.TaskStatusInProgress, true},
		{"completed", model.TaskStatusCompleted, true},
		{"cancelled", model.TaskStatusCancelled, true},
		{"empty", model.TaskStatus(""), false},
		{"invalid", model.TaskStatus("done"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.want {
				t.Errorf("TaskStatus(%q).IsValid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestPriority_IsValid(t *testing.T) {
	for p := model.Priority(-1); p <= 6; p++ {
		want := p >= 1 && p <= 4
		if got := p.IsValid(); got != want {
			t.Errorf("Priority(%d).IsValid() = %v, want %v", p, got, want)
		}
	}
}

func TestRole_IsValid(t *testing.T) {
	if !model.RoleUser.IsValid() || !model.RoleAdmin.IsValid() {
		t.Error("expected user and admin to be valid roles")
	}
	if model.Role("owner").IsValid() {
		t.Error("expected owner to be an invalid role")
	}
}

func TestUser_JSONOmitsPasswordHash(t *testing.T) {
	u := model.User{ID: "u-1", Email: "a@example.com", PasswordHash: "$2a$10$secret", Role: model.RoleUser}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "secret") || strings.Contains(string(data), "password") {
		t.Errorf("password hash leaked into JSON: %s", data)
	}
}

func TestTaskDetail_JSONRendersSummaries(t *testing.T) {
	creator := model.UserSummary{ID: "u-1", Email: "a@example.com", Role: model.RoleUser}
	d := model.TaskDetail{
		Task:    model.Task{ID: "t-1", AssignedBy: "u-1", AssignedTo: "u-2"},
		Creator: &creator,
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	by, ok := out["assigned_by"].(map[string]any)
	if !ok {
		t.Fatalf("expected assigned_by object, got %v", out["assigned_by"])
	}
	if by["email"] != "a@example.com" {
		t.Errorf("assigned_by.email = %v", by["email"])
	}
	if out["assigned_to"] != nil {
		t.Errorf("expected orphaned assigned_to to be null, got %v", out["assigned_to"])
	}
}
