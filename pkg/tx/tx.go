// Package tx provides the transaction boundary for mutating operations.
//
// The engine assumes the substrate executes every public mutation as one
// atomic, serializable transaction: a sequence of reads, validations, and a
// few writes that either all apply or none do, with no suspension points.
// Runner is that boundary. The in-process implementation serializes all
// mutations behind one mutex, which is exactly the single-writer total order
// the original substrate guarantees; a SQL implementation can supply real
// transactions behind the same shape.
package tx

import (
	"context"
	"sync"
)

// Runner executes fn with transactional semantics. If fn returns an error
// the operation is considered aborted and no partial state may remain
// visible; callers achieve that by validating before writing.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Serial runs every transaction under a single process-wide mutex.
type Serial struct {
	mu sync.Mutex
}

// NewSerial constructs the in-process runner.
func NewSerial() *Serial {
	return &Serial{}
}

func (s *Serial) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx)
}
