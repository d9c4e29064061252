package repository

import (
	"context"

	"coursehub/backend/internal/model"
)

// DraftRepository stores versioned writing drafts. A draft row is addressed by
// its generated ID for writes and by its natural key for lookups.
type DraftRepository interface {
	FindDraft(ctx context.Context, key model.DraftKey) (*model.Draft, error)
	CreateDraft(ctx context.Context, draft *model.Draft) error
	UpdateDraft(ctx context.Context, draft *model.Draft) error
	// ListDrafts returns every version for the pair, newest version first.
	ListDrafts(ctx context.Context, studentID, taskKey string) ([]*model.Draft, error)
}

// UsageRepository stores per-student daily request counters.
type UsageRepository interface {
	GetUsage(ctx context.Context, studentID, usageDate string) (*model.Usage, error)
	CreateUsage(ctx context.Context, usage *model.Usage) error
	// IncrementUsage adds one request to the counter while it is below limit
	// and returns the new count. It returns ErrNotFound when the counter is
	// missing or already at limit.
	IncrementUsage(ctx context.Context, id string, limit int) (int, error)
}

// Repository defines the interface for data storage operations.
type Repository interface {
	DraftRepository
	UsageRepository
}
