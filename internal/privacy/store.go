package privacy

import (
	"context"

	"repute/pkg/domain"
)

// SettingsStore keeps privacy settings keyed by (domain, owner) with
// insert-or-overwrite semantics.
type SettingsStore interface {
	Find(ctx context.Context, domainID domain.DomainID, owner domain.Principal) (*Settings, error)
	Upsert(ctx context.Context, settings *Settings) error
}

// DelegationStore keeps delegation records keyed by (domain, owner).
// Removal is a soft delete: the record stays for audit with Active=false.
type DelegationStore interface {
	Find(ctx context.Context, domainID domain.DomainID, owner domain.Principal) (*Delegation, error)
	Upsert(ctx context.Context, delegation *Delegation) error
}
