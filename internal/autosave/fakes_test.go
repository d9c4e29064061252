package autosave

import (
	"context"
	"sort"
	"sync"
	"time"

	"coursehub/backend/internal/model"
	"coursehub/backend/internal/repository"
)

// memStore is an in-memory Store that counts writes.
type memStore struct {
	mu       sync.Mutex
	rows     map[model.DraftKey]*model.Draft
	creates  int
	updates  int
	findErr  error
	writeErr error
	onWrite  func()
}

func newMemStore() *memStore {
	return &memStore{rows: map[model.DraftKey]*model.Draft{}}
}

func (s *memStore) FindDraft(_ context.Context, key model.DraftKey) (*model.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	row, ok := s.rows[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (s *memStore) CreateDraft(_ context.Context, d *model.Draft) error {
	if s.onWrite != nil {
		s.onWrite()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.creates++
	cp := *d
	s.rows[d.Key()] = &cp
	return nil
}

func (s *memStore) UpdateDraft(_ context.Context, d *model.Draft) error {
	if s.onWrite != nil {
		s.onWrite()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.updates++
	cp := *d
	s.rows[d.Key()] = &cp
	return nil
}

func (s *memStore) ListDrafts(_ context.Context, studentID, taskKey string) ([]*model.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Draft{}
	for key, row := range s.rows {
		if key.StudentID == studentID && key.TaskKey == taskKey {
			cp := *row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (s *memStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates + s.updates
}

func (s *memStore) content(version int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[model.DraftKey{StudentID: "s1", TaskKey: "w1", Version: version}]
	if !ok {
		return ""
	}
	return row.Content
}

// manualScheduler records scheduled calls and runs them only when told to.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{delay: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) active() []*manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// elapse runs every timer that is still armed.
func (s *manualScheduler) elapse() {
	for _, t := range s.active() {
		t.fired = true
		t.f()
	}
}

// recordingBeacon captures payloads synchronously.
type recordingBeacon struct {
	mu   sync.Mutex
	sent []model.BeaconPayload
}

func (b *recordingBeacon) Send(p model.BeaconPayload) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, p)
}
