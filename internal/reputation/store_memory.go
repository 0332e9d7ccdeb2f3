package reputation

import (
	"context"
	"sync"

	"repute/pkg/domain"
	"repute/pkg/sentinel"
)

type recordKey struct {
	domain domain.DomainID
	user   domain.Principal
}

// InMemory implements Store with a mutex-guarded map.
type InMemory struct {
	mu      sync.RWMutex
	records map[recordKey]*Record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[recordKey]*Record)}
}

func (s *InMemory) Find(_ context.Context, domainID domain.DomainID, user domain.Principal) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.records[recordKey{domainID, user}]; ok {
		out := *r
		return &out, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Upsert(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *record
	s.records[recordKey{record.Domain, record.User}] = &stored
	return nil
}
