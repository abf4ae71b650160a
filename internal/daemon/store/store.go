package store

import (
	"sync"
	"time"

	"github.com/grovetools/pulse/internal/poller"
)

// Store is the in-memory status store. It is thread-safe and supports
// pub/sub for real-time updates.
type Store struct {
	mu          sync.RWMutex
	status      Status
	subscribers map[chan Update]struct{}
}

// New creates a new Store instance.
func New() *Store {
	return &Store{
		status: Status{
			StartedAt: time.Now(),
			Counts:    make(map[string]int),
		},
		subscribers: make(map[chan Update]struct{}),
	}
}

// Get returns a copy of the current status.
func (s *Store) Get() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	st.Counts = make(map[string]int, len(s.status.Counts))
	for k, v := range s.status.Counts {
		st.Counts[k] = v
	}
	return st
}

// Observe records a poller event and notifies subscribers. It has the
// poller.Observer signature.
func (s *Store) Observe(e poller.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Counts[e.Outcome.String()]++
	switch e.Outcome {
	case poller.Reporting:
		s.status.LastReported = e.State
	case poller.Sent:
		s.status.Repository = e.Repository
		s.status.LastSentAt = e.Time
	case poller.Failed:
		if e.Err != nil {
			s.status.LastError = e.Err.Error()
			s.status.LastErrorAt = e.Time
		}
	}

	s.broadcastLocked(Update{Type: UpdateEvent, Source: "poller", Event: e})
}

// BroadcastConfigReload counts a configuration reload and notifies
// subscribers.
func (s *Store) BroadcastConfigReload(file string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.ConfigReloads++
	s.broadcastLocked(Update{Type: UpdateConfigReload, Source: "config", Payload: file})
}

func (s *Store) broadcastLocked(u Update) {
	for ch := range s.subscribers {
		select {
		case ch <- u:
		default:
			// Non-blocking send to prevent slow clients from stalling the poller
		}
	}
}

// Subscribe creates a new subscription channel for status updates.
func (s *Store) Subscribe() chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Update, 100)
	s.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch chan Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; !ok {
		return
	}
	delete(s.subscribers, ch)
	close(ch)
}
