package auditlog

import (
	"context"
	"sync"
	"time"

	id "medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
)

// InMemoryStore is the arena+index layout: entries grow in one slice (the
// arena) and the secondary indices hold positions into it. Nothing is ever
// removed from the arena, so index positions stay stable forever. The write
// lock is the log's single-writer boundary.
type InMemoryStore struct {
	mu         sync.RWMutex
	arena      []Entry
	byPatient  map[id.Principal][]int
	byAccessor map[id.Principal][]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byPatient:  make(map[id.Principal][]int),
		byAccessor: make(map[id.Principal][]int),
	}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.Sequence = uint64(len(s.arena)) + 1
	pos := len(s.arena)
	s.arena = append(s.arena, entry)
	s.byPatient[entry.Patient] = append(s.byPatient[entry.Patient], pos)
	s.byAccessor[entry.Accessor] = append(s.byAccessor[entry.Accessor], pos)
	return entry, nil
}

func (s *InMemoryStore) CountForPatient(_ context.Context, patient id.Principal) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byPatient[patient]), nil
}

func (s *InMemoryStore) EntryForPatient(_ context.Context, patient id.Principal, index int) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	positions := s.byPatient[patient]
	if index < 0 || index >= len(positions) {
		return Entry{}, sentinel.ErrOutOfRange
	}
	return s.arena[positions[index]], nil
}

// EntriesInTimeRange walks the patient index in insertion order and stops as
// soon as max matches are collected. Bounds are inclusive.
func (s *InMemoryStore) EntriesInTimeRange(_ context.Context, patient id.Principal, start, end time.Time, max int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Entry, 0)
	if max <= 0 {
		return results, nil
	}
	for _, pos := range s.byPatient[patient] {
		entry := s.arena[pos]
		if entry.Timestamp.Before(start) || entry.Timestamp.After(end) {
			continue
		}
		results = append(results, entry)
		if len(results) == max {
			break
		}
	}
	return results, nil
}

func (s *InMemoryStore) EntriesByAccessor(_ context.Context, accessor id.Principal, max int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Entry, 0)
	if max <= 0 {
		return results, nil
	}
	for _, pos := range s.byAccessor[accessor] {
		results = append(results, s.arena[pos])
		if len(results) == max {
			break
		}
	}
	return results, nil
}
