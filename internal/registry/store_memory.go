package registry

import (
	"context"
	"sync"

	"repute/pkg/domain"
	"repute/pkg/sentinel"
)

// InMemory implements Store with a slice indexed by domain ID; the slice
// length is the next sequence value.
type InMemory struct {
	mu      sync.RWMutex
	domains []*Domain
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Create(_ context.Context, d *Domain) (domain.DomainID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := domain.DomainID(len(s.domains))
	d.ID = id
	stored := *d
	s.domains = append(s.domains, &stored)
	return id, nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.DomainID) (*Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if uint64(id) >= uint64(len(s.domains)) {
		return nil, sentinel.ErrNotFound
	}
	out := *s.domains[id]
	return &out, nil
}

func (s *InMemory) Exists(_ context.Context, id domain.DomainID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(id) < uint64(len(s.domains)), nil
}
