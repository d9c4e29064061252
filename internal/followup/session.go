// Package followup bounds the conversation a student may have about one
// feedback result.
package followup

import (
	"context"
	"fmt"
	"strings"
	"sync"

	apperrors "coursehub/backend/internal/errors"
	"coursehub/backend/internal/model"
)

// DefaultMaxRounds is the number of follow-up exchanges allowed per feedback result.
const DefaultMaxRounds = 3

const systemPrompt = "You are a helpful academic writing tutor. The student submitted an outline and received feedback. " +
	"Now they have a follow-up question. Keep responses brief (2-3 sentences). " +
	"Focus only on key point coverage and accuracy, not writing style or progression."

var (
	ErrRoundsExhausted = fmt.Errorf("%w: follow-up limit reached, start a new draft for more feedback", apperrors.ErrConflict)
	ErrEmptyMessage    = fmt.Errorf("%w: follow-up message is empty", apperrors.ErrValidation)
	ErrNoFeedback      = fmt.Errorf("%w: no feedback to follow up on yet", apperrors.ErrConflict)
	ErrBusy            = fmt.Errorf("%w: a follow-up is already in progress", apperrors.ErrConflict)
	ErrStale           = fmt.Errorf("%w: feedback changed while the follow-up was running", apperrors.ErrConflict)
)

// Generator sends messages to the remote service and returns the trimmed
// reply. onDelta receives text as it arrives and may be nil.
type Generator func(ctx context.Context, messages []model.ChatMessage, onDelta func(string)) (string, error)

// Session holds the transcript attached to one feedback result.
type Session struct {
	mu         sync.Mutex
	maxRounds  int
	content    string
	feedback   string
	transcript []model.ChatMessage
	rounds     int
	busy       bool
	epoch      uint64
}

// NewSession returns an empty session. A non-positive maxRounds selects DefaultMaxRounds.
func NewSession(maxRounds int) *Session {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &Session{maxRounds: maxRounds}
}

// Reset attaches the session to new base feedback and discards the transcript.
func (s *Session) Reset(content, feedback string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = strings.TrimSpace(content)
	s.feedback = strings.TrimSpace(feedback)
	s.discard()
}

// Clear detaches the session from any feedback.
func (s *Session) Clear() {
	s.Reset("", "")
}

func (s *Session) discard() {
	s.transcript = nil
	s.rounds = 0
	s.busy = false
	s.epoch++
}

// Submit runs one follow-up round. A rejected call leaves the session
// untouched. A failed or empty reply removes the user message again and does
// not consume a round.
func (s *Session) Submit(ctx context.Context, text string, generate Generator, onDelta func(string)) (string, error) {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	switch {
	case s.busy:
		s.mu.Unlock()
		return "", ErrBusy
	case s.rounds >= s.maxRounds:
		s.mu.Unlock()
		return "", ErrRoundsExhausted
	case text == "":
		s.mu.Unlock()
		return "", ErrEmptyMessage
	case s.feedback == "":
		s.mu.Unlock()
		return "", ErrNoFeedback
	}
	prompt := s.prompt(text)
	s.transcript = append(s.transcript, model.ChatMessage{Role: model.RoleUser, Content: text})
	s.busy = true
	epoch := s.epoch
	s.mu.Unlock()

	reply, err := generate(ctx, prompt, onDelta)
	reply = strings.TrimSpace(reply)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return "", ErrStale
	}
	s.busy = false
	if err == nil && reply == "" {
		err = fmt.Errorf("%w: empty follow-up reply", apperrors.ErrUnavailable)
	}
	if err != nil {
		s.transcript = s.transcript[:len(s.transcript)-1]
		return "", err
	}
	s.transcript = append(s.transcript, model.ChatMessage{Role: model.RoleAssistant, Content: reply})
	s.rounds++
	return reply, nil
}

// prompt orders the context as system, base content with feedback, prior
// transcript, then the new question.
func (s *Session) prompt(text string) []model.ChatMessage {
	msgs := make([]model.ChatMessage, 0, len(s.transcript)+3)
	msgs = append(msgs,
		model.ChatMessage{Role: model.RoleSystem, Content: systemPrompt},
		model.ChatMessage{Role: model.RoleUser, Content: fmt.Sprintf("Student's outline:\n%s\n\nInitial feedback:\n%s", s.content, s.feedback)},
	)
	msgs = append(msgs, s.transcript...)
	return append(msgs, model.ChatMessage{Role: model.RoleUser, Content: text})
}

// Transcript returns a copy of the exchanged messages.
func (s *Session) Transcript() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

func (s *Session) RoundsUsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rounds
}

func (s *Session) RoundsLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxRounds - s.rounds
}

func (s *Session) MaxRounds() int {
	return s.maxRounds
}
