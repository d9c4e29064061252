package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "coursehub/backend/internal/errors"
	"coursehub/backend/internal/llm"
	"coursehub/backend/internal/model"
	"coursehub/backend/internal/repository"

	"github.com/google/uuid"
)

const (
	anonymousStudent = "anonymous"
	defaultWeekTitle = "this week"
	defaultTheme     = "University English"
	defaultHint      = "You are a supportive academic English tutor helping students build confidence and accuracy."
)

// ChatMeta describes where in the course a relayed chat happens.
type ChatMeta struct {
	WeekTitle    string `json:"week_title,omitempty"`
	Theme        string `json:"theme,omitempty"`
	AIPromptHint string `json:"ai_prompt_hint,omitempty"`
	TaskKey      string `json:"task_key,omitempty"`
	Type         string `json:"type,omitempty"`
}

// ChatRequest is a chat relayed to the upstream model.
type ChatRequest struct {
	Messages  []model.ChatMessage `json:"messages" validate:"required,min=1,dive"`
	StudentID string              `json:"student_id,omitempty"`
	Meta      *ChatMeta           `json:"meta,omitempty"`
}

// RelayService forwards chats to the upstream model under a shared daily
// request allowance per student.
type RelayService struct {
	repo         repository.UsageRepository
	llm          llm.LLMProvider
	model        string
	systemPrompt string
	limit        int
	now          func() time.Time
}

func NewRelayService(repo repository.UsageRepository, llmProvider llm.LLMProvider, modelName, systemPrompt string, dailyLimit int) *RelayService {
	return &RelayService{
		repo:         repo,
		llm:          llmProvider,
		model:        modelName,
		systemPrompt: systemPrompt,
		limit:        dailyLimit,
		now:          time.Now,
	}
}

// WithClock replaces the time source used to pick the usage day.
func (s *RelayService) WithClock(now func() time.Time) *RelayService {
	s.now = now
	return s
}

func (s *RelayService) today() string {
	return s.now().UTC().Format(time.DateOnly)
}

// Usage returns today's counter for studentID.
func (s *RelayService) Usage(ctx context.Context, studentID string) (*model.Usage, error) {
	studentID = normalizeStudent(studentID)
	usage := &model.Usage{StudentID: studentID, UsageDate: s.today(), Limit: s.limit}
	current, err := s.repo.GetUsage(ctx, studentID, usage.UsageDate)
	switch {
	case err == nil:
		usage.ID = current.ID
		usage.RequestCount = current.RequestCount
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("%w: could not read usage: %v", apperrors.ErrPersistence, err)
	}
	return usage, nil
}

// Acquire counts one request against today's allowance. When the allowance is
// used up it returns the usage together with ErrRateLimited. The counter is
// incremented in the store, so concurrent requests cannot exceed the limit.
func (s *RelayService) Acquire(ctx context.Context, studentID string) (*model.Usage, error) {
	if s.limit <= 0 {
		return nil, fmt.Errorf("%w: the shared AI relay is disabled", apperrors.ErrUnavailable)
	}
	usage, err := s.Usage(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if usage.RequestCount >= s.limit {
		return usage, s.rateLimited(usage)
	}

	if usage.ID == "" {
		created := *usage
		created.ID = uuid.NewString()
		created.RequestCount = 1
		createErr := s.repo.CreateUsage(ctx, &created)
		if createErr == nil {
			return &created, nil
		}
		// Another request created today's counter first.
		current, err := s.repo.GetUsage(ctx, usage.StudentID, usage.UsageDate)
		if err != nil {
			return nil, fmt.Errorf("%w: could not record usage: %v", apperrors.ErrPersistence, createErr)
		}
		usage.ID = current.ID
	}

	count, err := s.repo.IncrementUsage(ctx, usage.ID, s.limit)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		usage.RequestCount = s.limit
		return usage, s.rateLimited(usage)
	case err != nil:
		return nil, fmt.Errorf("%w: could not record usage: %v", apperrors.ErrPersistence, err)
	}
	usage.RequestCount = count
	return usage, nil
}

func (s *RelayService) rateLimited(usage *model.Usage) error {
	return fmt.Errorf("%w: %d of %d requests used today", apperrors.ErrRateLimited, usage.RequestCount, s.limit)
}

// Stream sends req upstream with the course system message in front and
// forwards the reply fragments to ch, which is closed on return.
func (s *RelayService) Stream(ctx context.Context, req *ChatRequest, ch chan<- llm.StreamResponse) error {
	msgs := make([]model.ChatMessage, 0, len(req.Messages)+1)
	msgs = append(msgs, model.ChatMessage{Role: model.RoleSystem, Content: s.systemMessage(req.Meta)})
	msgs = append(msgs, req.Messages...)
	return s.llm.GenerateStream(ctx, &llm.GenerateRequest{Model: s.model, Messages: msgs}, ch)
}

func (s *RelayService) systemMessage(meta *ChatMeta) string {
	week, theme, hint := defaultWeekTitle, defaultTheme, defaultHint
	if meta != nil {
		week = firstNonEmpty(meta.WeekTitle, week)
		theme = firstNonEmpty(meta.Theme, theme)
		hint = firstNonEmpty(meta.AIPromptHint, hint)
	}
	return fmt.Sprintf("%s You are currently supporting %s (theme: %s). %s", s.systemPrompt, week, theme, hint)
}

func normalizeStudent(id string) string {
	if id = strings.TrimSpace(id); id == "" {
		return anonymousStudent
	}
	return id
}

func firstNonEmpty(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
