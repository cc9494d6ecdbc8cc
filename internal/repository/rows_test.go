package repository

import (
	"database/sql"
	"testing"
	"time"
)

func TestSummaryRow_NullReferenceIsNil(t *testing.T) {
	if got := (summaryRow{}).toModel(); got != nil {
		t.Errorf("expected nil summary, got %+v", got)
	}

	row := summaryRow{
		ID:    sql.NullString{String: "u-1", Valid: true},
		Email: sql.NullString{String: "a@example.com", Valid: true},
		Role:  sql.NullString{String: "admin", Valid: true},
	}
	got := row.toModel()
	if got == nil || got.ID != "u-1" || got.Email != "a@example.com" || got.Role != "admin" {
		t.Errorf("unexpected summary %+v", got)
	}
}

func TestTaskRow_CompletedAt(t *testing.T) {
	if got := (taskRow{}).toModel(); got.CompletedAt != nil {
		t.Errorf("expected nil completed_at, got %v", got.CompletedAt)
	}

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	got := taskRow{CompletedAt: sql.NullTime{Time: at, Valid: true}}.toModel()
	if got.CompletedAt == nil || !got.CompletedAt.Equal(at) {
		t.Errorf("expected completed_at %v, got %v", at, got.CompletedAt)
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"5f0c6f4e-8a7b-4d7e-9c3a-2b1e0f9d8c7a", true},
		{"", false},
		{"64b7f1c2e4b0a1a2b3c4d5e6", false},
		{"'; DROP TABLE tasks; --", false},
	}
	for _, tt := range tests {
		if got := validID(tt.id); got != tt.want {
			t.Errorf("validID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
