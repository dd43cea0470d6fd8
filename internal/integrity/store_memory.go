package integrity

import (
	"context"
	"sync"

	id "medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
)

// InMemoryStore keeps records in a map plus a per-owner registration-order
// list. One RWMutex is the registry's single-writer boundary.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	byOwner map[id.Principal][]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]Record),
		byOwner: make(map[id.Principal][]string),
	}
}

func (s *InMemoryStore) Upsert(_ context.Context, record Record) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.records[record.ContentID]
	if existed {
		// Identity of the record is preserved across updates.
		record.Owner = prev.Owner
		record.CreatedAt = prev.CreatedAt
	} else {
		s.byOwner[record.Owner] = append(s.byOwner[record.Owner], record.ContentID)
	}
	record.Exists = true
	s.records[record.ContentID] = record
	return prev, existed, nil
}

func (s *InMemoryStore) Get(_ context.Context, contentID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.records[contentID]; ok {
		return record, nil
	}
	return Record{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) CountByOwner(_ context.Context, owner id.Principal) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byOwner[owner]), nil
}

func (s *InMemoryStore) ContentIDAt(_ context.Context, owner id.Principal, index int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byOwner[owner]
	if index < 0 || index >= len(ids) {
		return "", sentinel.ErrOutOfRange
	}
	return ids[index], nil
}
