package registry

import (
	"context"

	"repute/pkg/domain"
)

// Store owns domain records and the global monotonic domain-id sequence.
// Create assigns the next sequential ID (0-based) to the given domain.
// Because domains are never deleted, an ID exists iff it is below the next
// sequence value.
type Store interface {
	Create(ctx context.Context, d *Domain) (domain.DomainID, error)
	FindByID(ctx context.Context, id domain.DomainID) (*Domain, error)
	Exists(ctx context.Context, id domain.DomainID) (bool, error)
}
