package interfaces

import (
	"context"

	"coursehub/backend/internal/feedback"
	"coursehub/backend/internal/llm"
	"coursehub/backend/internal/model"
	"coursehub/backend/internal/service"
)

// This file defines the interfaces for our core services.
// The API layer depends on these instead of the concrete services so that
// handlers can be tested against mocks.

// WorkspaceService defines the contract for live editing sessions.
type WorkspaceService interface {
	Open(ctx context.Context, studentID, taskKey string, task feedback.Task) (*service.WorkspaceState, error)
	State(studentID, taskKey string) (*service.WorkspaceState, error)
	Edit(studentID, taskKey, content string) (*service.WorkspaceState, error)
	Save(ctx context.Context, studentID, taskKey string) (*service.WorkspaceState, []*model.Draft, error)
	RequestFeedback(ctx context.Context, studentID, taskKey string, onDelta func(string)) (*service.WorkspaceState, error)
	FollowUp(ctx context.Context, studentID, taskKey, message string, onDelta func(string)) (*service.WorkspaceState, error)
	NewVersion(studentID, taskKey string) (*service.WorkspaceState, error)
	LoadVersion(ctx context.Context, studentID, taskKey string, version int) (*service.WorkspaceState, error)
	Unload(studentID, taskKey string) (bool, error)
	Close(studentID, taskKey string) error
}

// DraftService defines the contract for stored draft history.
type DraftService interface {
	History(ctx context.Context, studentID, taskKey string) ([]*service.DraftView, error)
	ReceiveBeacon(ctx context.Context, payload *model.BeaconPayload) error
}

// RelayService defines the contract for the metered chat relay.
type RelayService interface {
	Usage(ctx context.Context, studentID string) (*model.Usage, error)
	Acquire(ctx context.Context, studentID string) (*model.Usage, error)
	Stream(ctx context.Context, req *service.ChatRequest, ch chan<- llm.StreamResponse) error
}
