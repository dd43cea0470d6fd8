package consent

import (
	"context"
	"sync"

	id "medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
)

// pairKey identifies the unique (grantor, grantee) slot.
type pairKey struct {
	grantor id.Principal
	grantee id.Principal
}

// InMemoryStore keeps grants in a map guarded by a single RWMutex. The write
// lock is the registry's single-writer boundary; readers observe the last
// committed grant without blocking each other.
type InMemoryStore struct {
	mu     sync.RWMutex
	grants map[pairKey]Grant
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{grants: make(map[pairKey]Grant)}
}

func (s *InMemoryStore) Put(_ context.Context, grant Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[pairKey{grant.Grantor, grant.Grantee}] = grant
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, grantor, grantee id.Principal) (Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if grant, ok := s.grants[pairKey{grantor, grantee}]; ok {
		return grant, nil
	}
	return Grant{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) Delete(_ context.Context, grantor, grantee id.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{grantor, grantee}
	if _, ok := s.grants[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.grants, key)
	return nil
}
