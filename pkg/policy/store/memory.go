package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"sentinel-hq/sentinel/pkg/policy"
)

// MemoryStore is an in-memory policy store for tests and single-process
// deployments without persistence requirements.
type MemoryStore struct {
	mu       sync.RWMutex
	policies map[string]*policy.Policy
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		policies: make(map[string]*policy.Policy),
	}
}

// Get returns the policy with the given ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.policies[id]
	if !ok {
		return nil, fmt.Errorf("policy %q: %w", id, ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

// List returns the policies matching the filter, ordered by ID.
func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*policy.Policy, 0, len(s.policies))
	for _, p := range s.policies {
		if !filter.Matches(p) {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Put validates and stores a copy of the policy.
func (s *MemoryStore) Put(ctx context.Context, p *policy.Policy) error {
	if err := policy.Validate(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	now := time.Now().UTC()
	if existing, ok := s.policies[p.ID]; ok {
		cp.CreatedAt = existing.CreatedAt
	} else if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now

	s.policies[p.ID] = &cp
	return nil
}

// Delete removes the policy with the given ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[id]; !ok {
		return fmt.Errorf("policy %q: %w", id, ErrNotFound)
	}
	delete(s.policies, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
