package privacy

import (
	"context"
	"sync"

	"repute/pkg/domain"
	"repute/pkg/sentinel"
)

type ownerKey struct {
	domain domain.DomainID
	owner  domain.Principal
}

// InMemorySettings implements SettingsStore.
type InMemorySettings struct {
	mu       sync.RWMutex
	settings map[ownerKey]*Settings
}

func NewInMemorySettings() *InMemorySettings {
	return &InMemorySettings{settings: make(map[ownerKey]*Settings)}
}

func (s *InMemorySettings) Find(_ context.Context, domainID domain.DomainID, owner domain.Principal) (*Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if found, ok := s.settings[ownerKey{domainID, owner}]; ok {
		out := *found
		out.AuthorizedViewers = append([]domain.Principal(nil), found.AuthorizedViewers...)
		return &out, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemorySettings) Upsert(_ context.Context, settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *settings
	stored.AuthorizedViewers = append([]domain.Principal(nil), settings.AuthorizedViewers...)
	s.settings[ownerKey{settings.Domain, settings.Owner}] = &stored
	return nil
}

// InMemoryDelegations implements DelegationStore.
type InMemoryDelegations struct {
	mu          sync.RWMutex
	delegations map[ownerKey]*Delegation
}

func NewInMemoryDelegations() *InMemoryDelegations {
	return &InMemoryDelegations{delegations: make(map[ownerKey]*Delegation)}
}

func (s *InMemoryDelegations) Find(_ context.Context, domainID domain.DomainID, owner domain.Principal) (*Delegation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if found, ok := s.delegations[ownerKey{domainID, owner}]; ok {
		out := *found
		return &out, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryDelegations) Upsert(_ context.Context, delegation *Delegation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *delegation
	s.delegations[ownerKey{delegation.Domain, delegation.Owner}] = &stored
	return nil
}
