package verification

import (
	"context"

	"repute/pkg/domain"
)

// ProviderStore keeps provider grants keyed by (domain, provider). Revocation
// is a soft delete: the grant stays for audit with Active=false.
type ProviderStore interface {
	Find(ctx context.Context, domainID domain.DomainID, provider domain.Principal) (*Provider, error)
	Upsert(ctx context.Context, p *Provider) error
}

// Store keeps verifications keyed by (domain, user, type) with
// insert-or-overwrite semantics. Revocation is a soft delete.
type Store interface {
	Find(ctx context.Context, domainID domain.DomainID, user domain.Principal, verificationType string) (*Verification, error)
	Upsert(ctx context.Context, v *Verification) error
	// ListActiveByUser returns all active verifications held by a principal,
	// expired or not, in no particular order.
	ListActiveByUser(ctx context.Context, domainID domain.DomainID, user domain.Principal) ([]*Verification, error)
}
