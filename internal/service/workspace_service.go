package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"coursehub/backend/internal/autosave"
	apperrors "coursehub/backend/internal/errors"
	"coursehub/backend/internal/feedback"
	"coursehub/backend/internal/followup"
	"coursehub/backend/internal/llm"
	"coursehub/backend/internal/model"
	"coursehub/backend/internal/repository"
	"coursehub/backend/internal/stream"
)

// WorkspaceConfig holds the timing and limits of editing sessions.
type WorkspaceConfig struct {
	Model             string
	AutosaveDelay     time.Duration
	SaveTimeout       time.Duration
	FeedbackTimeout   time.Duration
	MaxFollowUpRounds int
}

// WorkspaceState is what a client needs to render an editing session.
type WorkspaceState struct {
	StudentID   string              `json:"student_id"`
	TaskKey     string              `json:"task_key"`
	Title       string              `json:"title"`
	Version     int                 `json:"version"`
	Content     string              `json:"content"`
	Status      autosave.Status     `json:"status"`
	Feedback    string              `json:"feedback,omitempty"`
	IsSubmitted bool                `json:"is_submitted"`
	FollowUps   []model.ChatMessage `json:"follow_ups"`
	RoundsUsed  int                 `json:"rounds_used"`
	RoundsLeft  int                 `json:"rounds_left"`
}

type sessionKey struct {
	studentID string
	taskKey   string
}

// workspace is one open editing session. The autosave controller and the
// follow-up session lock themselves; mu guards the remaining fields.
type workspace struct {
	key       sessionKey
	editor    *autosave.Controller
	followups *followup.Session

	mu        sync.Mutex
	task      feedback.Task
	guard     feedback.Guard
	feedback  string
	submitted bool
	requested bool
}

// WorkspaceService hosts the editing sessions of all connected students.
type WorkspaceService struct {
	repo      repository.DraftRepository
	llm       llm.LLMProvider
	beacon    autosave.Beacon
	cfg       WorkspaceConfig
	afterFunc autosave.AfterFunc

	mu       sync.Mutex
	sessions map[sessionKey]*workspace
}

func NewWorkspaceService(repo repository.DraftRepository, llmProvider llm.LLMProvider, beacon autosave.Beacon, cfg WorkspaceConfig) *WorkspaceService {
	if cfg.FeedbackTimeout <= 0 {
		cfg.FeedbackTimeout = 30 * time.Second
	}
	return &WorkspaceService{
		repo:     repo,
		llm:      llmProvider,
		beacon:   beacon,
		cfg:      cfg,
		sessions: make(map[sessionKey]*workspace),
	}
}

// WithScheduler replaces the debounce timer source. Tests use it to fire
// autosaves deterministically.
func (s *WorkspaceService) WithScheduler(afterFunc autosave.AfterFunc) *WorkspaceService {
	s.afterFunc = afterFunc
	return s
}

// Open returns the session for the pair, creating it and resuming the latest
// stored version when it is not open yet.
func (s *WorkspaceService) Open(ctx context.Context, studentID, taskKey string, task feedback.Task) (*WorkspaceState, error) {
	key := sessionKey{studentID: studentID, taskKey: taskKey}

	s.mu.Lock()
	ws, ok := s.sessions[key]
	s.mu.Unlock()
	if ok {
		ws.mu.Lock()
		if task.Title != "" || task.Instructions != "" {
			ws.task = task
		}
		ws.mu.Unlock()
		return ws.state(), nil
	}

	ws = &workspace{
		key: key,
		editor: autosave.New(autosave.Config{
			StudentID:   studentID,
			TaskKey:     taskKey,
			Delay:       s.cfg.AutosaveDelay,
			SaveTimeout: s.cfg.SaveTimeout,
			Store:       s.repo,
			Beacon:      s.beacon,
			AfterFunc:   s.afterFunc,
		}),
		followups: followup.NewSession(s.cfg.MaxFollowUpRounds),
		task:      task,
	}
	drafts, err := ws.editor.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(drafts) > 0 {
		ws.resume(drafts[0])
	}

	s.mu.Lock()
	if existing, ok := s.sessions[key]; ok {
		s.mu.Unlock()
		ws.editor.Close()
		return existing.state(), nil
	}
	s.sessions[key] = ws
	s.mu.Unlock()

	slog.Info("Workspace opened.", "student_id", studentID, "task_key", taskKey, "version", ws.editor.View().Version)
	return ws.state(), nil
}

func (s *WorkspaceService) get(studentID, taskKey string) (*workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.sessions[sessionKey{studentID: studentID, taskKey: taskKey}]
	if !ok {
		return nil, fmt.Errorf("%w: workspace %s/%s is not open", apperrors.ErrNotFound, studentID, taskKey)
	}
	return ws, nil
}

func (s *WorkspaceService) remove(ws *workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[ws.key] == ws {
		delete(s.sessions, ws.key)
	}
}

// State returns the current state of an open session.
func (s *WorkspaceService) State(studentID, taskKey string) (*WorkspaceState, error) {
	ws, err := s.get(studentID, taskKey)
	if err != nil {
		return nil, err
	}
	return ws.state(), nil
}

// Edit replaces the draft text; saving is debounced.
func (s *WorkspaceService) Edit(studentID, taskKey, content string) (*WorkspaceState, error) {
	ws, err := s.get(studentID, taskKey)
	if err != nil {
		return nil, err
	}
	ws.editor.Edit(content)
	return ws.state(), nil
}

// Save writes the draft now and returns the refreshed version history.
func (s *WorkspaceService) Save(ctx context.Context, studentID, taskKey string) (*WorkspaceState, []*model.Draft, error) {
	ws, err := s.get(studentID, taskKey)
	if err != nil {
		return nil, nil, err
	}
	drafts, err := ws.editor.Save(ctx)
	if err != nil {
		return ws.state(), nil, err
	}
	return ws.state(), drafts, nil
}

// RequestFeedback sends the current draft for feedback. Deltas are passed to
// onDelta as they arrive. On success the feedback is stored on the draft
// version and a fresh follow-up session starts.
func (s *WorkspaceService) RequestFeedback(ctx context.Context, studentID, taskKey string, onDelta func(string)) (*WorkspaceState, error) {
	ws, err := s.get(studentID, taskKey)
	if err != nil {
		return nil, err
	}

	view := ws.editor.View()
	content := strings.TrimSpace(view.Content)

	ws.mu.Lock()
	switch {
	case ws.requested:
		ws.mu.Unlock()
		return nil, fmt.Errorf("%w: feedback is already being generated", apperrors.ErrConflict)
	case content == "":
		ws.mu.Unlock()
		return nil, fmt.Errorf("%w: write something before requesting feedback", apperrors.ErrValidation)
	}
	if err := ws.guard.Check(content); err != nil {
		ws.mu.Unlock()
		return nil, err
	}
	ws.requested = true
	task := ws.task
	ws.mu.Unlock()
	defer func() {
		ws.mu.Lock()
		ws.requested = false
		ws.mu.Unlock()
	}()

	logger := slog.With("student_id", studentID, "task_key", taskKey, "version", view.Version)

	if _, err := ws.editor.Save(ctx); err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithTimeout(ctx, s.cfg.FeedbackTimeout)
	defer cancel()
	text, err := llm.Complete(streamCtx, s.llm, &llm.GenerateRequest{
		Model:    s.cfg.Model,
		Messages: feedback.BuildPrompt(task, content),
	}, onDelta)
	if err != nil {
		logger.Warn("Feedback request failed.", "error", err)
		return nil, unavailable(err)
	}

	if _, err := ws.editor.SaveFeedback(ctx, view.Version, content, text); err != nil {
		return nil, err
	}

	ws.mu.Lock()
	if ws.editor.View().Version == view.Version {
		ws.feedback = text
		ws.submitted = true
		ws.guard.Record(content)
		ws.followups.Reset(content, text)
	}
	ws.mu.Unlock()

	logger.Info("Feedback stored.", "length", len(text))
	return ws.state(), nil
}

// FollowUp runs one follow-up round on the current feedback.
func (s *WorkspaceService) FollowUp(ctx context.Context, studentID, taskKey, message string, onDelta func(string)) (*WorkspaceState, error) {
	ws, err := s.get(studentID, taskKey)
	if err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithTimeout(ctx, s.cfg.FeedbackTimeout)
	defer cancel()
	generate := func(ctx context.Context, msgs []model.ChatMessage, onDelta func(string)) (string, error) {
		return llm.Complete(ctx, s.llm, &llm.GenerateRequest{Model: s.cfg.Model, Messages: msgs}, onDelta)
	}

	if _, err := ws.followups.Submit(streamCtx, message, generate, onDelta); err != nil {
		if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrUnavailable) {
			return nil, err
		}
		slog.Warn("Follow-up request failed.", "student_id", studentID, "task_key", taskKey, "error", err)
		return nil, unavailable(err)
	}
	return ws.state(), nil
}

// NewVersion starts an empty draft version and clears feedback state.
func (s *WorkspaceService) NewVersion(studentID, taskKey string) (*WorkspaceState, error) {
	ws, err := s.get(studentID, taskKey)
	if err != nil {
		return nil, err
	}
	ws.mu.Lock()
	version := ws.editor.NewVersion()
	ws.feedback = ""
	ws.submitted = false
	ws.guard.Reset()
	ws.followups.Clear()
	ws.mu.Unlock()

	slog.Info("New draft version started.", "student_id", studentID, "task_key", taskKey, "version", version)
	return ws.state(), nil
}

// LoadVersion switches the session to a stored version.
func (s *WorkspaceService) LoadVersion(ctx context.Context, studentID, taskKey string, version int) (*WorkspaceState, error) {
	ws, err := s.get(studentID, taskKey)
	if err != nil {
		return nil, err
	}
	draft, err := s.repo.FindDraft(ctx, model.DraftKey{StudentID: studentID, TaskKey: taskKey, Version: version})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: version %d does not exist", apperrors.ErrNotFound, version)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}
	ws.editor.LoadVersion(draft)
	ws.resume(draft)
	return ws.state(), nil
}

// Unload closes the session and hands unsaved text to the beacon. It
// reports whether a beacon was sent.
func (s *WorkspaceService) Unload(studentID, taskKey string) (bool, error) {
	ws, err := s.get(studentID, taskKey)
	if err != nil {
		return false, err
	}
	s.remove(ws)
	return ws.editor.Unload(), nil
}

// Close discards the session, cancelling any pending autosave.
func (s *WorkspaceService) Close(studentID, taskKey string) error {
	ws, err := s.get(studentID, taskKey)
	if err != nil {
		return err
	}
	s.remove(ws)
	ws.editor.Close()
	return nil
}

// Shutdown unloads every open session.
func (s *WorkspaceService) Shutdown() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[sessionKey]*workspace)
	s.mu.Unlock()

	for _, ws := range sessions {
		ws.editor.Unload()
	}
}

// resume adopts the feedback state of a stored draft.
func (ws *workspace) resume(d *model.Draft) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.feedback = d.Feedback()
	ws.submitted = d.IsSubmitted
	if d.IsSubmitted {
		ws.guard.Record(d.Content)
	} else {
		ws.guard.Reset()
	}
	if ws.feedback != "" {
		ws.followups.Reset(d.Content, ws.feedback)
	} else {
		ws.followups.Clear()
	}
}

func (ws *workspace) state() *WorkspaceState {
	view := ws.editor.View()
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return &WorkspaceState{
		StudentID:   ws.key.studentID,
		TaskKey:     ws.key.taskKey,
		Title:       ws.task.Title,
		Version:     view.Version,
		Content:     view.Content,
		Status:      view.Status,
		Feedback:    ws.feedback,
		IsSubmitted: ws.submitted,
		FollowUps:   ws.followups.Transcript(),
		RoundsUsed:  ws.followups.RoundsUsed(),
		RoundsLeft:  ws.followups.RoundsLeft(),
	}
}

// unavailable folds every stream failure into ErrUnavailable, except a quota
// refusal, which the student should see as such.
func unavailable(err error) error {
	var reqErr *stream.RequestFailedError
	if errors.As(err, &reqErr) && reqErr.Status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", apperrors.ErrRateLimited, reqErr.Message)
	}
	return fmt.Errorf("%w: %w", apperrors.ErrUnavailable, err)
}
