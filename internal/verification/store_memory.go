package verification

import (
	"context"
	"sync"

	"repute/pkg/domain"
	"repute/pkg/sentinel"
)

type providerKey struct {
	domain   domain.DomainID
	provider domain.Principal
}

// InMemoryProviders implements ProviderStore.
type InMemoryProviders struct {
	mu        sync.RWMutex
	providers map[providerKey]*Provider
}

func NewInMemoryProviders() *InMemoryProviders {
	return &InMemoryProviders{providers: make(map[providerKey]*Provider)}
}

func (s *InMemoryProviders) Find(_ context.Context, domainID domain.DomainID, provider domain.Principal) (*Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if found, ok := s.providers[providerKey{domainID, provider}]; ok {
		return copyProvider(found), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryProviders) Upsert(_ context.Context, p *Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[providerKey{p.Domain, p.Provider}] = copyProvider(p)
	return nil
}

func copyProvider(p *Provider) *Provider {
	out := *p
	out.AllowedTypes = append([]string(nil), p.AllowedTypes...)
	return &out
}

type verificationKey struct {
	domain domain.DomainID
	user   domain.Principal
	vType  string
}

// InMemory implements Store.
type InMemory struct {
	mu            sync.RWMutex
	verifications map[verificationKey]*Verification
}

func NewInMemory() *InMemory {
	return &InMemory{verifications: make(map[verificationKey]*Verification)}
}

func (s *InMemory) Find(_ context.Context, domainID domain.DomainID, user domain.Principal, verificationType string) (*Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if found, ok := s.verifications[verificationKey{domainID, user, verificationType}]; ok {
		return copyVerification(found), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Upsert(_ context.Context, v *Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifications[verificationKey{v.Domain, v.User, v.Type}] = copyVerification(v)
	return nil
}

func (s *InMemory) ListActiveByUser(_ context.Context, domainID domain.DomainID, user domain.Principal) ([]*Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Verification
	for key, v := range s.verifications {
		if key.domain == domainID && key.user == user && v.Active {
			out = append(out, copyVerification(v))
		}
	}
	return out, nil
}

func copyVerification(v *Verification) *Verification {
	out := *v
	if v.ExpiresAt != nil {
		t := *v.ExpiresAt
		out.ExpiresAt = &t
	}
	return &out
}
