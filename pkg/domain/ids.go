// Package domain defines the identifier primitives shared by every feature
// package. Keeping them here prevents feature-to-feature imports for the sake
// of a type and gives the compiler a chance to catch crossed-up arguments.
package domain

import (
	"strconv"

	dErrors "repute/pkg/domainerrors"
)

// DomainID identifies a reputation domain. Domains are allocated from a
// global monotonic sequence starting at 0 and are never deleted, so an ID is
// valid iff it is below the registry's next sequence value.
type DomainID uint64

// ParseDomainID parses a decimal domain ID from a route or payload.
func ParseDomainID(s string) (DomainID, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeValidation, "domain id is required")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeValidation, "domain id must be a non-negative integer")
	}
	return DomainID(v), nil
}

func (d DomainID) String() string {
	return strconv.FormatUint(uint64(d), 10)
}

// ActivityID identifies an activity within a domain. Activity IDs are a
// per-domain sequence starting at 0, strictly increasing, never reused.
type ActivityID uint64

// ParseActivityID parses a decimal activity ID.
func ParseActivityID(s string) (ActivityID, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeValidation, "activity id is required")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeValidation, "activity id must be a non-negative integer")
	}
	return ActivityID(v), nil
}

func (a ActivityID) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

// Principal is an opaque caller identity supplied by the authentication
// layer. The engine compares principals for equality and never interprets
// them: a principal may be a user, a domain admin, a verifier provider, or a
// delegation proxy depending on which records reference it.
type Principal string

const maxPrincipalLen = 256

// ParsePrincipal validates an identity string from a trust boundary.
func ParsePrincipal(s string) (Principal, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "principal is required")
	}
	if len(s) > maxPrincipalLen {
		return "", dErrors.New(dErrors.CodeValidation, "principal exceeds maximum length")
	}
	return Principal(s), nil
}

func (p Principal) String() string {
	return string(p)
}

// IsZero reports whether the principal is unset.
func (p Principal) IsZero() bool {
	return p == ""
}

// LogicalTime is the engine's notion of time: a monotonically non-decreasing
// counter supplied by the execution environment, one tick per committed
// transaction batch. The core never reads wall-clock time for scoring.
type LogicalTime uint64

// Elapsed returns the ticks elapsed since an earlier instant, clamped at
// zero so a reordered pair cannot produce an underflowed duration.
func (t LogicalTime) Elapsed(since LogicalTime) uint64 {
	if t <= since {
		return 0
	}
	return uint64(t - since)
}
