package autosave

import (
	"strings"

	"coursehub/backend/internal/model"
)

// Status is the save state shown next to the editor.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusUnsaved Status = "unsaved"
	StatusSaving  Status = "saving"
	StatusSaved   Status = "saved"
)

// Action tells the controller what to do with the debounce timer after a transition.
type Action int

const (
	ActionNone Action = iota
	ActionCancel
	ActionSchedule
)

// State is the editing state of one (student, task) pair. Transitions are
// pure: each method returns the next State and leaves the receiver alone.
type State struct {
	Version       int
	MaxVersion    int
	Content       string
	LastPersisted string
	InFlight      int
}

// Pending is a save that has been started but not yet acknowledged.
type Pending struct {
	Version int
	Content string
}

// NewState returns the state of an untouched first version.
func NewState() State {
	return State{Version: 1, MaxVersion: 1}
}

// Status derives the save status from the state.
func (s State) Status() Status {
	switch {
	case s.InFlight > 0:
		return StatusSaving
	case strings.TrimSpace(s.Content) == "":
		return StatusIdle
	case model.SameText(s.Content, s.LastPersisted):
		return StatusSaved
	default:
		return StatusUnsaved
	}
}

// Dirty reports whether the content differs from what is stored.
func (s State) Dirty() bool {
	return strings.TrimSpace(s.Content) != "" && !model.SameText(s.Content, s.LastPersisted)
}

// Edit applies new content. Content equal to the stored snapshot, or empty
// content, cancels any pending save; anything else re-arms the debounce.
func (s State) Edit(content string) (State, Action) {
	s.Content = content
	if !s.Dirty() {
		return s, ActionCancel
	}
	return s, ActionSchedule
}

// Begin starts a save of the current content. ok is false when there is
// nothing to write; force skips the equality check but never writes empty text.
func (s State) Begin(force bool) (next State, p Pending, ok bool) {
	content := strings.TrimSpace(s.Content)
	if content == "" || (!force && !s.Dirty()) {
		return s, Pending{}, false
	}
	s.InFlight++
	return s, Pending{Version: s.Version, Content: content}, true
}

// Succeeded records an acknowledged save. A save for a version the editor has
// since left only releases its in-flight slot.
func (s State) Succeeded(p Pending) State {
	s = s.release()
	if p.Version == s.Version {
		s.LastPersisted = p.Content
	}
	return s
}

// Failed records a rejected save; the content stays unsaved.
func (s State) Failed() State {
	return s.release()
}

func (s State) release() State {
	if s.InFlight > 0 {
		s.InFlight--
	}
	return s
}

// Advance starts a new, empty version numbered after every version seen.
func (s State) Advance() State {
	next := s.MaxVersion + 1
	return State{Version: next, MaxVersion: next, InFlight: s.InFlight}
}

// Resume switches to a stored draft, which counts as persisted.
func (s State) Resume(d *model.Draft) State {
	s.Version = d.Version
	if d.Version > s.MaxVersion {
		s.MaxVersion = d.Version
	}
	s.Content = d.Content
	s.LastPersisted = d.Content
	return s
}

// Observe raises MaxVersion to cover every version in history.
func (s State) Observe(history []*model.Draft) State {
	for _, d := range history {
		if d.Version > s.MaxVersion {
			s.MaxVersion = d.Version
		}
	}
	return s
}
