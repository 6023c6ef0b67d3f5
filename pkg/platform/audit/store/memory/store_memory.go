package memory

import (
	"context"
	"sync"

	id "callguard/pkg/domain"
	audit "callguard/pkg/platform/audit"
)

// InMemoryStore keeps audit events per profile.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.ProfileID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.ProfileID][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ProfileID] = append(s.events[event.ProfileID], event)
	return nil
}

func (s *InMemoryStore) ListByProfile(_ context.Context, profileID id.ProfileID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[profileID]...), nil
}

// ListByAction returns every event with the given action, across profiles.
func (s *InMemoryStore) ListByAction(_ context.Context, action audit.AuditEvent) []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, events := range s.events {
		for _, e := range events {
			if e.Action == string(action) {
				out = append(out, e)
			}
		}
	}
	return out
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.ProfileID][]audit.Event)
}
