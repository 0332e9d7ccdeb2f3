package endorsement

import (
	"context"
	"sync"

	"repute/pkg/domain"
	"repute/pkg/sentinel"
)

type pairKey struct {
	domain   domain.DomainID
	endorser domain.Principal
	endorsee domain.Principal
}

// InMemory implements Store.
type InMemory struct {
	mu           sync.RWMutex
	endorsements map[pairKey]*Endorsement
}

func NewInMemory() *InMemory {
	return &InMemory{endorsements: make(map[pairKey]*Endorsement)}
}

func (s *InMemory) Find(_ context.Context, domainID domain.DomainID, endorser, endorsee domain.Principal) (*Endorsement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if found, ok := s.endorsements[pairKey{domainID, endorser, endorsee}]; ok {
		return copyEndorsement(found), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Upsert(_ context.Context, e *Endorsement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endorsements[pairKey{e.Domain, e.Endorser, e.Endorsee}] = copyEndorsement(e)
	return nil
}

func (s *InMemory) ListActiveForEndorsee(_ context.Context, domainID domain.DomainID, endorsee domain.Principal) ([]*Endorsement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Endorsement
	for key, e := range s.endorsements {
		if key.domain == domainID && key.endorsee == endorsee && e.Active {
			out = append(out, copyEndorsement(e))
		}
	}
	return out, nil
}

func copyEndorsement(e *Endorsement) *Endorsement {
	out := *e
	out.Tags = append([]string(nil), e.Tags...)
	return &out
}
