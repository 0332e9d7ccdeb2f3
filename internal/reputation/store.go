package reputation

import (
	"context"

	"repute/pkg/domain"
)

// Store keeps reputation records keyed by (domain, user) with explicit
// upsert semantics: Upsert inserts or overwrites in place, there is no
// separate update path and records are never deleted.
type Store interface {
	Find(ctx context.Context, domainID domain.DomainID, user domain.Principal) (*Record, error)
	Upsert(ctx context.Context, record *Record) error
}
