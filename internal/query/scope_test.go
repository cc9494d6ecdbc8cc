package query_test

import (
	"testing"

	"github.com/jaekwang-park/taskboard-api/internal/model"
	"github.com/jaekwang-park/taskboard-api/internal/query"
)

func TestScopeFor(t *testing.T) {
	own := model.Task{ID: "t-1", AssignedBy: "alice", AssignedTo: "bob"}
	assigned := model.Task{ID: "t-2", AssignedBy: "bob", AssignedTo: "alice"}
	foreign := model.Task{ID: "t-3", AssignedBy: "bob", AssignedTo: "carol"}

	tests := []struct {
		name   string
		caller model.Caller
		task   model.Task
		want   bool
	}{
		{"admin sees foreign task", model.Caller{ID: "root", Role: model.RoleAdmin}, foreign, true},
		{"creator sees own task", model.Caller{ID: "alice", Role: model.RoleUser}, own, true},
		{"assignee sees assigned task", model.Caller{ID: "alice", Role: model.RoleUser}, assigned, true},
		{"user does not see foreign task", model.Caller{ID: "alice", Role: model.RoleUser}, foreign, false},
		{"empty caller sees nothing", model.Caller{Role: model.RoleUser}, own, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := query.ScopeFor(tt.caller).Allows(tt.task); got != tt.want {
				t.Errorf("Allows() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScope_ZeroValueMatchesNothing(t *testing.T) {
	var s query.Scope
	if s.Allows(model.Task{AssignedBy: "", AssignedTo: ""}) {
		t.Error("zero scope must not match any task")
	}
	if s.Unrestricted() {
		t.Error("zero scope must not be unrestricted")
	}
}
