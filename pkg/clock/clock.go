// Package clock supplies logical time to the engine. The scoring core never
// reads the wall clock; it sees a monotonically non-decreasing tick counter
// advanced once per committed transaction batch by whatever substrate hosts
// the engine. In this process that substrate is the HTTP layer.
package clock

import (
	"sync/atomic"

	"repute/pkg/domain"
)

// Clock yields the current logical time.
type Clock interface {
	Now() domain.LogicalTime
}

// Logical is the production clock: an atomic counter ticked by the transport
// once per mutating request.
type Logical struct {
	ticks atomic.Uint64
}

// NewLogical returns a clock starting at the given tick.
func NewLogical(start domain.LogicalTime) *Logical {
	l := &Logical{}
	l.ticks.Store(uint64(start))
	return l
}

// Now returns the current tick without advancing it.
func (l *Logical) Now() domain.LogicalTime {
	return domain.LogicalTime(l.ticks.Load())
}

// Tick advances logical time by one and returns the new value.
func (l *Logical) Tick() domain.LogicalTime {
	return domain.LogicalTime(l.ticks.Add(1))
}

// Manual is a test clock driven explicitly.
type Manual struct {
	now domain.LogicalTime
}

// NewManual returns a clock frozen at the given tick.
func NewManual(now domain.LogicalTime) *Manual {
	return &Manual{now: now}
}

func (m *Manual) Now() domain.LogicalTime {
	return m.now
}

// Set moves the clock to an absolute tick.
func (m *Manual) Set(now domain.LogicalTime) {
	m.now = now
}

// Advance moves the clock forward by delta ticks.
func (m *Manual) Advance(delta uint64) {
	m.now += domain.LogicalTime(delta)
}
