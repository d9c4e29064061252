// Package feedback decides when a draft may be sent for feedback and builds
// the prompt for that request.
package feedback

import (
	"fmt"
	"strings"

	apperrors "coursehub/backend/internal/errors"
)

// ErrNoChanges is returned when the content matches what was last submitted.
var ErrNoChanges = fmt.Errorf("%w: no changes detected, edit your text before requesting new feedback", apperrors.ErrConflict)

// ShouldSubmit reports whether candidate differs from lastSubmitted. An empty
// lastSubmitted never blocks a submission.
func ShouldSubmit(candidate, lastSubmitted string) bool {
	last := strings.TrimSpace(lastSubmitted)
	if last == "" {
		return true
	}
	return strings.TrimSpace(candidate) != last
}

// Guard remembers the content of the last successful feedback round for one
// draft version. It is not safe for concurrent use; the owner serializes access.
type Guard struct {
	lastSubmitted string
}

// Check returns ErrNoChanges when candidate would repeat the last submission.
func (g *Guard) Check(candidate string) error {
	if !ShouldSubmit(candidate, g.lastSubmitted) {
		return ErrNoChanges
	}
	return nil
}

// Record stores content as the last submission. Call it only after a
// feedback round succeeded.
func (g *Guard) Record(content string) {
	g.lastSubmitted = strings.TrimSpace(content)
}

// Reset forgets the last submission, e.g. when a new draft version starts.
func (g *Guard) Reset() {
	g.lastSubmitted = ""
}

// LastSubmitted returns the trimmed content of the last successful round.
func (g *Guard) LastSubmitted() string {
	return g.lastSubmitted
}
