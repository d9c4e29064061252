package autosave

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "coursehub/backend/internal/errors"
	"coursehub/backend/internal/model"
	"coursehub/backend/internal/repository"

	"github.com/google/uuid"
)

// Store is the draft persistence the controller writes through.
type Store interface {
	FindDraft(ctx context.Context, key model.DraftKey) (*model.Draft, error)
	CreateDraft(ctx context.Context, draft *model.Draft) error
	UpdateDraft(ctx context.Context, draft *model.Draft) error
	ListDrafts(ctx context.Context, studentID, taskKey string) ([]*model.Draft, error)
}

// Persist upserts draft by its natural key: the row for (student, task,
// version) is looked up and updated by ID, or inserted when missing. The
// content is always written. Feedback and the submitted flag are written only
// when draft.AIFeedback is set, so a plain content save never clears them.
// Persist returns the stored row.
//
// Two saves of a version that has no row yet can both miss the lookup. The
// one whose insert loses looks the row up again and updates it, so the later
// write wins.
func Persist(ctx context.Context, store Store, draft *model.Draft) (*model.Draft, error) {
	now := time.Now().UTC()

	existing, err := store.FindDraft(ctx, draft.Key())
	if errors.Is(err, repository.ErrNotFound) {
		row := newRow(draft, now)
		createErr := store.CreateDraft(ctx, row)
		if createErr == nil {
			return row, nil
		}
		existing, err = store.FindDraft(ctx, draft.Key())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, createErr)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}

	existing.Content = draft.Content
	if draft.AIFeedback != nil {
		existing.AIFeedback = draft.AIFeedback
		existing.IsSubmitted = draft.IsSubmitted
	}
	existing.UpdatedAt = now
	if err := store.UpdateDraft(ctx, existing); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}
	return existing, nil
}

func newRow(draft *model.Draft, now time.Time) *model.Draft {
	row := &model.Draft{
		ID:        uuid.NewString(),
		StudentID: draft.StudentID,
		TaskKey:   draft.TaskKey,
		Version:   draft.Version,
		Content:   draft.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if draft.AIFeedback != nil {
		row.AIFeedback = draft.AIFeedback
		row.IsSubmitted = draft.IsSubmitted
	}
	return row
}
