package audit

import (
	"context"

	"repute/pkg/domain"
)

// Store persists audit events. It is append-only; events are never updated
// or deleted by the engine.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actor domain.Principal) ([]Event, error)
}
