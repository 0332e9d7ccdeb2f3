package endorsement

import (
	"context"

	"repute/pkg/domain"
)

// Store keeps endorsements keyed by (domain, endorser, endorsee). Removal is
// a soft delete: the record stays with Active=false so a later re-endorsement
// can be told apart from a first endorsement.
type Store interface {
	Find(ctx context.Context, domainID domain.DomainID, endorser, endorsee domain.Principal) (*Endorsement, error)
	Upsert(ctx context.Context, e *Endorsement) error
	// ListActiveForEndorsee returns all active endorsements received by a
	// principal, in no particular order.
	ListActiveForEndorsee(ctx context.Context, domainID domain.DomainID, endorsee domain.Principal) ([]*Endorsement, error)
}
