// Package autosave debounces edits to a draft and persists versioned
// snapshots of it.
package autosave

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	apperrors "coursehub/backend/internal/errors"
	"coursehub/backend/internal/model"
)

const (
	DefaultDelay       = time.Second
	DefaultSaveTimeout = 10 * time.Second
)

// Timer is a scheduled call that can be cancelled.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func timeAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Config configures a Controller. Store is required.
type Config struct {
	StudentID   string
	TaskKey     string
	Delay       time.Duration
	SaveTimeout time.Duration
	Store       Store
	Beacon      Beacon
	Logger      *slog.Logger
	AfterFunc   AfterFunc
}

// View is a point-in-time copy of the editor state.
type View struct {
	Version int    `json:"version"`
	Content string `json:"content"`
	Status  Status `json:"status"`
}

// Controller owns the draft of one (student, task) pair. It is safe for
// concurrent use.
type Controller struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	timer   Timer
	gen     uint64
	closed  bool
	history []*model.Draft
}

func New(cfg Config) *Controller {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = DefaultSaveTimeout
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = timeAfterFunc
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Beacon == nil {
		cfg.Beacon = NewStoreBeacon(cfg.Store, cfg.Logger)
	}
	return &Controller{
		cfg:    cfg,
		logger: cfg.Logger.With("student_id", cfg.StudentID, "task_key", cfg.TaskKey),
		state:  NewState(),
	}
}

// Load fetches the version history and resumes the latest version, if any.
func (c *Controller) Load(ctx context.Context) ([]*model.Draft, error) {
	drafts, err := c.cfg.Store.ListDrafts(ctx, c.cfg.StudentID, c.cfg.TaskKey)
	if err != nil {
		return nil, fmt.Errorf("%w: could not load drafts: %v", apperrors.ErrPersistence, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.history = drafts
	c.state = c.state.Observe(drafts)
	if len(drafts) > 0 {
		c.state = c.state.Resume(drafts[0])
	}
	return drafts, nil
}

// Edit replaces the content and returns the resulting status. Content that
// matches the stored snapshot is never written.
func (c *Controller) Edit(content string) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, action := c.state.Edit(content)
	c.state = next
	switch action {
	case ActionCancel:
		c.cancelLocked()
	case ActionSchedule:
		if !c.closed {
			c.scheduleLocked()
		}
	}
	return c.state.Status()
}

func (c *Controller) scheduleLocked() {
	c.cancelLocked()
	gen := c.gen
	c.timer = c.cfg.AfterFunc(c.cfg.Delay, func() { c.fire(gen) })
}

// cancelLocked stops the pending timer. Bumping gen also neutralizes a timer
// that already fired and is waiting for the lock.
func (c *Controller) cancelLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	next, p, ok := c.state.Begin(false)
	if !ok {
		c.mu.Unlock()
		return
	}
	c.state = next
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.SaveTimeout)
	defer cancel()
	_, err := Persist(ctx, c.cfg.Store, c.draft(p))

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = c.state.Failed()
		c.logger.Warn("Autosave failed, draft left unsaved.", "version", p.Version, "error", err)
		return
	}
	c.state = c.state.Succeeded(p)
	c.logger.Debug("Draft autosaved.", "version", p.Version)
}

// Save writes the current content now, cancelling any pending autosave, and
// returns the refreshed version history.
func (c *Controller) Save(ctx context.Context) ([]*model.Draft, error) {
	c.mu.Lock()
	c.cancelLocked()
	next, p, ok := c.state.Begin(true)
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: there is nothing to save", apperrors.ErrValidation)
	}
	c.state = next
	c.mu.Unlock()

	_, err := Persist(ctx, c.cfg.Store, c.draft(p))

	c.mu.Lock()
	if err != nil {
		c.state = c.state.Failed()
		c.mu.Unlock()
		c.logger.Error("Failed to save draft.", "version", p.Version, "error", err)
		return nil, err
	}
	c.state = c.state.Succeeded(p)
	c.mu.Unlock()

	return c.refresh(ctx)
}

// SaveFeedback stores feedback for version together with the content it was
// given for, and marks that version submitted.
func (c *Controller) SaveFeedback(ctx context.Context, version int, content, feedback string) ([]*model.Draft, error) {
	content = strings.TrimSpace(content)
	draft := &model.Draft{
		StudentID:   c.cfg.StudentID,
		TaskKey:     c.cfg.TaskKey,
		Version:     version,
		Content:     content,
		AIFeedback:  &feedback,
		IsSubmitted: true,
	}
	if _, err := Persist(ctx, c.cfg.Store, draft); err != nil {
		c.logger.Error("Failed to store feedback.", "version", version, "error", err)
		return nil, err
	}

	c.mu.Lock()
	if c.state.Version == version && model.SameText(c.state.Content, content) {
		c.state.LastPersisted = content
		c.cancelLocked()
	}
	c.mu.Unlock()

	return c.refresh(ctx)
}

func (c *Controller) refresh(ctx context.Context) ([]*model.Draft, error) {
	drafts, err := c.cfg.Store.ListDrafts(ctx, c.cfg.StudentID, c.cfg.TaskKey)
	if err != nil {
		return nil, fmt.Errorf("%w: could not reload drafts: %v", apperrors.ErrPersistence, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = drafts
	c.state = c.state.Observe(drafts)
	return drafts, nil
}

// NewVersion starts an empty draft numbered after every version seen so far
// and returns its number. Stored versions are left untouched.
func (c *Controller) NewVersion() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.state = c.state.Advance()
	return c.state.Version
}

// LoadVersion switches the editor to a stored draft.
func (c *Controller) LoadVersion(d *model.Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.state = c.state.Resume(d)
}

// Unload closes the controller. If the content differs from what is stored,
// it is handed to the beacon without waiting for delivery. Unload reports
// whether a beacon was sent.
func (c *Controller) Unload() bool {
	c.mu.Lock()
	c.cancelLocked()
	c.closed = true
	dirty := c.state.Dirty()
	payload := model.BeaconPayload{
		StudentID: c.cfg.StudentID,
		TaskKey:   c.cfg.TaskKey,
		Content:   strings.TrimSpace(c.state.Content),
		Version:   c.state.Version,
	}
	c.mu.Unlock()

	if !dirty {
		return false
	}
	c.cfg.Beacon.Send(payload)
	return true
}

// Close cancels any pending autosave; later edits are no longer scheduled.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.closed = true
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{Version: c.state.Version, Content: c.state.Content, Status: c.state.Status()}
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Status()
}

// History returns the version list from the last load or save.
func (c *Controller) History() []*model.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*model.Draft, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Controller) draft(p Pending) *model.Draft {
	return &model.Draft{StudentID: c.cfg.StudentID, TaskKey: c.cfg.TaskKey, Version: p.Version, Content: p.Content}
}
