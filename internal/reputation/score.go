package reputation

import (
	"repute/internal/registry"
	"repute/pkg/domain"
)

// Score formula constants. All arithmetic is integer-only and truncates
// toward zero, so equivalent inputs produce identical scores regardless of
// execution order.
const (
	// MaxScore caps each signal score and the displayed score.
	MaxScore = 1000
	// endorsementBase is the score earned exactly at the domain's minimum
	// endorsement threshold.
	endorsementBase = 500
	// endorsementStep is the score per endorsement beyond the threshold.
	endorsementStep = 50
	// activityStep is the score per recorded activity; saturates at
	// MaxScore after ten activities.
	activityStep = 100
	// tierStep maps verification tier [0,5] onto [0,1000].
	tierStep = 200
	// decayPeriodTicks is the logical-time span of one decay period.
	decayPeriodTicks = 1000
	// ratePerMilleBase scales the per-period decay rate.
	ratePerMilleBase = 1000
)

// EndorsementScore ramps linearly to endorsementBase at the domain minimum,
// then climbs by endorsementStep per extra endorsement up to MaxScore.
func EndorsementScore(count uint64, minRequired uint32) uint64 {
	min := uint64(minRequired)
	if count < min {
		return count * endorsementBase / min
	}
	score := uint64(endorsementBase) + (count-min)*endorsementStep
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// ActivityScore grows by activityStep per activity and saturates at MaxScore.
// Whether an activity was verified does not enter the formula; only the
// count does.
func ActivityScore(count uint64) uint64 {
	score := count * activityStep
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// VerificationScore maps the tier onto the score range.
func VerificationScore(tier uint32) uint64 {
	return uint64(tier) * tierStep
}

// AggregateScore combines the three signal scores under the domain's
// weighting policy. Each term truncates independently.
func AggregateScore(d *registry.Domain, r *Record) uint64 {
	e := EndorsementScore(r.EndorsementCount, d.MinEndorsements) * uint64(d.WeightEndorsement) / 100
	a := ActivityScore(r.ActivityCount) * uint64(d.WeightActivity) / 100
	v := VerificationScore(r.VerificationTier) * uint64(d.WeightVerification) / 100
	return e + a + v
}

// DecayScore reduces an aggregate by ratePerMille per elapsed decay period.
// Zero periods or a zero rate leave the aggregate untouched; the result
// clamps at zero once the cumulative reduction exceeds the aggregate.
func DecayScore(aggregate uint64, elapsedTicks uint64, ratePerMille uint32) uint64 {
	periods := elapsedTicks / decayPeriodTicks
	if periods == 0 || ratePerMille == 0 {
		return aggregate
	}
	reduction := aggregate * periods * uint64(ratePerMille) / ratePerMilleBase
	if reduction >= aggregate {
		return 0
	}
	return aggregate - reduction
}

// Recompute derives the aggregate and decayed scores from the record's
// counters under the domain policy, then stamps the update time. Decay
// periods are measured from the previous update to now.
func Recompute(d *registry.Domain, r *Record, now domain.LogicalTime) {
	aggregate := AggregateScore(d, r)
	r.AggregateScore = aggregate
	r.Score = DecayScore(aggregate, now.Elapsed(r.UpdatedAt), r.DecayRatePerMille)
	r.UpdatedAt = now
}
