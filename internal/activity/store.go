package activity

import (
	"context"

	"repute/pkg/domain"
)

// Store keeps activities keyed by (domain, activityId). Create allocates the
// domain's next sequential id; ids start at 0, strictly increase, and are
// never reused. Activities are append-only except for the verified flag.
type Store interface {
	Create(ctx context.Context, a *Activity) (domain.ActivityID, error)
	FindByID(ctx context.Context, domainID domain.DomainID, id domain.ActivityID) (*Activity, error)
	Update(ctx context.Context, a *Activity) error
	// ListByUser returns a principal's activities, newest first.
	ListByUser(ctx context.Context, domainID domain.DomainID, user domain.Principal) ([]*Activity, error)
}
