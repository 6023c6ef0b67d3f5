// Package blocklist persists each profile's explicit block list and its
// enhanced blocking policy.
package blocklist

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"callguard/internal/callfilter/models"
	id "callguard/pkg/domain"
	"callguard/pkg/platform/sentinel"
)

// InMemoryStore is used when no database is configured and in tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	numbers  map[id.ProfileID]map[string]struct{}
	policies map[id.ProfileID]models.BlockPolicy
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		numbers:  make(map[id.ProfileID]map[string]struct{}),
		policies: make(map[id.ProfileID]models.BlockPolicy),
	}
}

// Block adds the normalized handle. Blocking twice is not an error.
func (s *InMemoryStore) Block(_ context.Context, profileID id.ProfileID, handle id.Handle) error {
	n := handle.Normalize()
	if n.IsEmpty() {
		return fmt.Errorf("block number: empty handle")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.numbers[profileID]
	if !ok {
		set = make(map[string]struct{})
		s.numbers[profileID] = set
	}
	set[string(n)] = struct{}{}
	return nil
}

func (s *InMemoryStore) Unblock(_ context.Context, profileID id.ProfileID, handle id.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.numbers[profileID]
	removed := false
	for _, v := range handle.Variants() {
		if _, ok := set[v]; ok {
			delete(set, v)
			removed = true
		}
	}
	if !removed {
		return fmt.Errorf("unblock number: %w", sentinel.ErrNotFound)
	}
	return nil
}

// IsBlocked reports whether any of the given stored forms is on the list.
func (s *InMemoryStore) IsBlocked(_ context.Context, profileID id.ProfileID, variants []string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.numbers[profileID]
	for _, v := range variants {
		if _, ok := set[v]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) ListBlocked(_ context.Context, profileID id.ProfileID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.numbers[profileID]))
	for n := range s.numbers[profileID] {
		out = append(out, n)
	}
	slices.Sort(out)
	return out, nil
}

// GetPolicy returns the zero policy for profiles that never set one.
func (s *InMemoryStore) GetPolicy(_ context.Context, profileID id.ProfileID) (models.BlockPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policies[profileID], nil
}

func (s *InMemoryStore) SetPolicy(_ context.Context, profileID id.ProfileID, policy models.BlockPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[profileID] = policy
	return nil
}
