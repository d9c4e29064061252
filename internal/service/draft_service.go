package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"coursehub/backend/internal/autosave"
	apperrors "coursehub/backend/internal/errors"
	"coursehub/backend/internal/model"
	"coursehub/backend/internal/render"
	"coursehub/backend/internal/repository"
)

// DraftView is a stored draft with its feedback rendered for display.
type DraftView struct {
	*model.Draft
	AIFeedbackHTML string `json:"ai_feedback_html,omitempty"`
}

// DraftService serves version history and receives unload beacons.
type DraftService struct {
	repo repository.DraftRepository
}

func NewDraftService(repo repository.DraftRepository) *DraftService {
	return &DraftService{repo: repo}
}

// History returns every version of a student's draft for a task, newest first.
func (s *DraftService) History(ctx context.Context, studentID, taskKey string) ([]*DraftView, error) {
	drafts, err := s.repo.ListDrafts(ctx, studentID, taskKey)
	if err != nil {
		return nil, fmt.Errorf("%w: could not list drafts: %v", apperrors.ErrPersistence, err)
	}

	views := make([]*DraftView, 0, len(drafts))
	for _, d := range drafts {
		html, err := render.Markdown(d.Feedback())
		if err != nil {
			slog.Warn("Could not render feedback, sending it as text only.", "student_id", studentID, "task_key", taskKey, "version", d.Version, "error", err)
		}
		views = append(views, &DraftView{Draft: d, AIFeedbackHTML: html})
	}
	return views, nil
}

// ReceiveBeacon stores the content of a best-effort unload save. Empty
// content is rejected as a validation error.
func (s *DraftService) ReceiveBeacon(ctx context.Context, payload *model.BeaconPayload) error {
	content := strings.TrimSpace(payload.Content)
	if content == "" {
		return fmt.Errorf("%w: beacon carries no content", apperrors.ErrValidation)
	}
	_, err := autosave.Persist(ctx, s.repo, &model.Draft{
		StudentID: payload.StudentID,
		TaskKey:   payload.TaskKey,
		Version:   payload.Version,
		Content:   content,
	})
	return err
}
