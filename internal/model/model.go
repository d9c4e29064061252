package model

import (
	"strings"
	"time"
)

// Role identifies the author of a ChatMessage.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DraftKey is the natural key of a Draft.
type DraftKey struct {
	StudentID string `json:"student_id"`
	TaskKey   string `json:"task_key"`
	Version   int    `json:"version"`
}

// Draft is one versioned snapshot of a student's writing for a task.
type Draft struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	TaskKey     string    `json:"task_key"`
	Version     int       `json:"version"`
	Content     string    `json:"content"`
	AIFeedback  *string   `json:"ai_feedback,omitempty"` // nil until a feedback round succeeds.
	IsSubmitted bool      `json:"is_submitted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Key returns the natural key of the draft.
func (d *Draft) Key() DraftKey {
	return DraftKey{StudentID: d.StudentID, TaskKey: d.TaskKey, Version: d.Version}
}

// Feedback returns the stored feedback or an empty string.
func (d *Draft) Feedback() string {
	if d.AIFeedback == nil {
		return ""
	}
	return *d.AIFeedback
}

// ChatMessage is a single entry in a follow-up transcript or an outgoing prompt.
type ChatMessage struct {
	Role    Role   `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

// StreamResponse is one event sent to clients of a streaming endpoint.
type StreamResponse struct {
	Content  string `json:"content,omitempty"`
	Done     bool   `json:"done"`
	Feedback string `json:"feedback,omitempty"`
	Error    string `json:"error,omitempty"`
}

// BeaconPayload is the body of a best-effort unload save.
type BeaconPayload struct {
	StudentID string `json:"student_id" validate:"required"`
	TaskKey   string `json:"task_key" validate:"required"`
	Content   string `json:"content"`
	Version   int    `json:"version" validate:"required,min=1"`
}

// Usage counts relay requests made by a student on a given UTC day.
type Usage struct {
	ID           string `json:"-"`
	StudentID    string `json:"student_id"`
	UsageDate    string `json:"usage_date"`
	RequestCount int    `json:"request_count"`
	Limit        int    `json:"limit"`
}

// SameText reports whether two texts are equal once surrounding whitespace is ignored.
func SameText(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}
