package reputation

import (
	"repute/pkg/domain"
)

// DefaultDecayRatePerMille is assigned when a record is created lazily on a
// user's first mutation: 10 per-mille of the aggregate per decay period.
const DefaultDecayRatePerMille = 10

// Record is the per-(domain, user) mutable aggregate feeding the score
// formula. It is created lazily on first mutation with all-zero counters and
// the default decay rate, mutated by every endorse/unendorse/activity/
// verify/revoke operation, and never deleted.
type Record struct {
	Domain            domain.DomainID    `json:"domain_id"`
	User              domain.Principal   `json:"user"`
	Score             uint64             `json:"score"`
	EndorsementCount  uint64             `json:"endorsement_count"`
	ActivityCount     uint64             `json:"activity_count"`
	VerificationTier  uint32             `json:"verification_tier"`
	AggregateScore    uint64             `json:"aggregate_score"`
	UpdatedAt         domain.LogicalTime `json:"updated_at"`
	DecayRatePerMille uint32             `json:"decay_rate_per_mille"`
}

// NewRecord returns the lazily-created zero record for a user.
func NewRecord(domainID domain.DomainID, user domain.Principal, now domain.LogicalTime) *Record {
	return &Record{
		Domain:            domainID,
		User:              user,
		UpdatedAt:         now,
		DecayRatePerMille: DefaultDecayRatePerMille,
	}
}

// DecrementEndorsements lowers the endorsement count by one, clamping at
// zero. The count can only reach zero through repeated removals; clamping
// keeps the unsigned counter defined instead of wrapping.
func (r *Record) DecrementEndorsements() {
	if r.EndorsementCount > 0 {
		r.EndorsementCount--
	}
}
