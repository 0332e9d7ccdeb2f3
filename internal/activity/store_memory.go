package activity

import (
	"context"
	"sort"
	"sync"

	"repute/pkg/domain"
	"repute/pkg/sentinel"
)

type activityKey struct {
	domain domain.DomainID
	id     domain.ActivityID
}

// InMemory implements Store.
type InMemory struct {
	mu         sync.RWMutex
	activities map[activityKey]*Activity
	nextID     map[domain.DomainID]domain.ActivityID
}

func NewInMemory() *InMemory {
	return &InMemory{
		activities: make(map[activityKey]*Activity),
		nextID:     make(map[domain.DomainID]domain.ActivityID),
	}
}

func (s *InMemory) Create(_ context.Context, a *Activity) (domain.ActivityID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID[a.Domain]
	s.nextID[a.Domain] = id + 1

	stored := *a
	stored.ID = id
	s.activities[activityKey{a.Domain, id}] = &stored
	return id, nil
}

func (s *InMemory) FindByID(_ context.Context, domainID domain.DomainID, id domain.ActivityID) (*Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if found, ok := s.activities[activityKey{domainID, id}]; ok {
		out := *found
		return &out, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Update(_ context.Context, a *Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.activities[activityKey{a.Domain, a.ID}]; !ok {
		return sentinel.ErrNotFound
	}
	stored := *a
	s.activities[activityKey{a.Domain, a.ID}] = &stored
	return nil
}

func (s *InMemory) ListByUser(_ context.Context, domainID domain.DomainID, user domain.Principal) ([]*Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Activity
	for key, a := range s.activities {
		if key.domain == domainID && a.User == user {
			copied := *a
			out = append(out, &copied)
		}
	}
	// Newest first; ids strictly increase with creation order.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
