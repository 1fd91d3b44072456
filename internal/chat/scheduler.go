package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scheduler runs the pipeline's delayed effects. Tasks are keyed by session so
// that closing or expiring a session cancels everything still pending for it.
// In legacy mode tasks are fire-and-forget and cannot be cancelled.
type Scheduler struct {
	legacy bool

	mu    sync.Mutex
	next  uint64
	tasks map[uuid.UUID]map[uint64]*time.Timer
}

func NewScheduler(legacy bool) *Scheduler {
	return &Scheduler{
		legacy: legacy,
		tasks:  make(map[uuid.UUID]map[uint64]*time.Timer),
	}
}

// Schedule runs fn after delay. The effect fires unconditionally unless the
// session's tasks are cancelled first.
func (s *Scheduler) Schedule(sessionID uuid.UUID, delay time.Duration, fn func()) {
	if s.legacy {
		time.AfterFunc(delay, fn)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	id := s.next
	timer := time.AfterFunc(delay, func() {
		s.forget(sessionID, id)
		fn()
	})

	if s.tasks[sessionID] == nil {
		s.tasks[sessionID] = make(map[uint64]*time.Timer)
	}
	s.tasks[sessionID][id] = timer
}

// CancelSession stops every pending task for the session. A task whose timer
// already fired is unaffected.
func (s *Scheduler) CancelSession(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, timer := range s.tasks[sessionID] {
		timer.Stop()
	}
	delete(s.tasks, sessionID)
}

// Pending reports how many tasks are still scheduled for the session.
func (s *Scheduler) Pending(sessionID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks[sessionID])
}

func (s *Scheduler) forget(sessionID uuid.UUID, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.tasks[sessionID]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(s.tasks, sessionID)
		}
	}
}
