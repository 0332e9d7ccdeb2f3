package reputation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"repute/internal/registry"
	"repute/pkg/domain"
)

func testDomain(wE, wA, wV, minEnd uint32) *registry.Domain {
	return &registry.Domain{
		ID:                 1,
		Name:               "community",
		Description:        "test community",
		Admin:              "admin",
		Active:             true,
		WeightEndorsement:  wE,
		WeightActivity:     wA,
		WeightVerification: wV,
		MinEndorsements:    minEnd,
	}
}

func TestEndorsementScore(t *testing.T) {
	t.Run("ramps linearly below the minimum", func(t *testing.T) {
		assert.Equal(t, uint64(0), EndorsementScore(0, 5))
		assert.Equal(t, uint64(100), EndorsementScore(1, 5))
		assert.Equal(t, uint64(400), EndorsementScore(4, 5))
	})

	t.Run("reaches base exactly at the minimum", func(t *testing.T) {
		assert.Equal(t, uint64(500), EndorsementScore(5, 5))
		assert.Equal(t, uint64(500), EndorsementScore(1, 1))
	})

	t.Run("climbs by step above the minimum", func(t *testing.T) {
		assert.Equal(t, uint64(550), EndorsementScore(6, 5))
		assert.Equal(t, uint64(750), EndorsementScore(10, 5))
	})

	t.Run("caps at max score", func(t *testing.T) {
		assert.Equal(t, uint64(1000), EndorsementScore(15, 5))
		assert.Equal(t, uint64(1000), EndorsementScore(500, 5))
	})

	t.Run("truncates toward zero below the minimum", func(t *testing.T) {
		// 1*500/3 = 166 exactly, no rounding up.
		assert.Equal(t, uint64(166), EndorsementScore(1, 3))
	})
}

func TestActivityScore(t *testing.T) {
	assert.Equal(t, uint64(0), ActivityScore(0))
	assert.Equal(t, uint64(300), ActivityScore(3))
	// Saturates at ten activities.
	assert.Equal(t, uint64(1000), ActivityScore(10))
	assert.Equal(t, uint64(1000), ActivityScore(11))
	assert.Equal(t, uint64(1000), ActivityScore(1000))
}

func TestVerificationScore(t *testing.T) {
	assert.Equal(t, uint64(0), VerificationScore(0))
	assert.Equal(t, uint64(400), VerificationScore(2))
	assert.Equal(t, uint64(1000), VerificationScore(5))
}

func TestAggregateScore(t *testing.T) {
	t.Run("worked example", func(t *testing.T) {
		// Weights (40,30,30), min 5 endorsements; 5 endorsements,
		// 3 activities, one level-2 verification:
		// floor(500*40/100) + floor(300*30/100) + floor(400*30/100)
		//   = 200 + 90 + 120 = 410.
		d := testDomain(40, 30, 30, 5)
		r := &Record{EndorsementCount: 5, ActivityCount: 3, VerificationTier: 2}
		assert.Equal(t, uint64(410), AggregateScore(d, r))
	})

	t.Run("each term truncates independently", func(t *testing.T) {
		// 3 endorsements of min 7: 3*500/7 = 214; 214*33/100 = 70.
		d := testDomain(33, 33, 33, 7)
		r := &Record{EndorsementCount: 3}
		assert.Equal(t, uint64(70), AggregateScore(d, r))
	})

	t.Run("zero weights produce zero", func(t *testing.T) {
		d := testDomain(0, 0, 0, 5)
		r := &Record{EndorsementCount: 50, ActivityCount: 50, VerificationTier: 5}
		assert.Equal(t, uint64(0), AggregateScore(d, r))
	})

	t.Run("full weights on maxed signals reach max score", func(t *testing.T) {
		d := testDomain(40, 30, 30, 5)
		r := &Record{EndorsementCount: 500, ActivityCount: 500, VerificationTier: 5}
		assert.Equal(t, uint64(1000), AggregateScore(d, r))
	})

	t.Run("monotonic in endorsement count", func(t *testing.T) {
		d := testDomain(40, 30, 30, 5)
		prev := uint64(0)
		for count := uint64(0); count <= 20; count++ {
			r := &Record{EndorsementCount: count}
			score := AggregateScore(d, r)
			assert.GreaterOrEqual(t, score, prev, "count %d", count)
			prev = score
		}
	})
}

func TestDecayScore(t *testing.T) {
	t.Run("no elapsed periods leaves the aggregate untouched", func(t *testing.T) {
		assert.Equal(t, uint64(410), DecayScore(410, 0, 10))
		assert.Equal(t, uint64(410), DecayScore(410, 999, 10))
	})

	t.Run("zero rate never decays", func(t *testing.T) {
		assert.Equal(t, uint64(410), DecayScore(410, 100_000, 0))
	})

	t.Run("reduces per whole period", func(t *testing.T) {
		// One period at 10 per-mille: 410*1*10/1000 = 4.
		assert.Equal(t, uint64(406), DecayScore(410, 1000, 10))
		// Five periods: 410*5*10/1000 = 20.
		assert.Equal(t, uint64(390), DecayScore(410, 5999, 10))
	})

	t.Run("clamps at zero", func(t *testing.T) {
		assert.Equal(t, uint64(0), DecayScore(410, 100*1000, 10))
		assert.Equal(t, uint64(0), DecayScore(1, 1000, 1000))
	})
}

func TestRecompute(t *testing.T) {
	t.Run("worked example end to end", func(t *testing.T) {
		d := testDomain(40, 30, 30, 5)
		r := NewRecord(d.ID, "alice", 100)
		r.EndorsementCount = 5
		r.ActivityCount = 3
		r.VerificationTier = 2

		Recompute(d, r, 100)
		assert.Equal(t, uint64(410), r.AggregateScore)
		assert.Equal(t, uint64(410), r.Score)
		assert.Equal(t, domain.LogicalTime(100), r.UpdatedAt)
	})

	t.Run("idempotent at the same instant", func(t *testing.T) {
		d := testDomain(40, 30, 30, 5)
		r := NewRecord(d.ID, "alice", 100)
		r.EndorsementCount = 5
		r.ActivityCount = 3
		r.VerificationTier = 2

		Recompute(d, r, 100)
		first := *r
		Recompute(d, r, 100)
		assert.Equal(t, first, *r)
	})

	t.Run("applies decay from the previous update", func(t *testing.T) {
		d := testDomain(40, 30, 30, 5)
		r := NewRecord(d.ID, "alice", 0)
		r.EndorsementCount = 5
		r.ActivityCount = 3
		r.VerificationTier = 2

		Recompute(d, r, 2000)
		// Two periods at the default 10 per-mille: 410*2*10/1000 = 8.
		assert.Equal(t, uint64(410), r.AggregateScore)
		assert.Equal(t, uint64(402), r.Score)
		assert.Equal(t, domain.LogicalTime(2000), r.UpdatedAt)
	})

	t.Run("order independence over equivalent inputs", func(t *testing.T) {
		d := testDomain(40, 30, 30, 5)

		a := NewRecord(d.ID, "alice", 0)
		a.EndorsementCount = 5
		a.ActivityCount = 3
		Recompute(d, a, 0)
		a.VerificationTier = 2
		Recompute(d, a, 0)

		b := NewRecord(d.ID, "alice", 0)
		b.VerificationTier = 2
		Recompute(d, b, 0)
		b.EndorsementCount = 5
		b.ActivityCount = 3
		Recompute(d, b, 0)

		assert.Equal(t, a.Score, b.Score)
		assert.Equal(t, a.AggregateScore, b.AggregateScore)
	})
}

func TestRecordDecrementEndorsements(t *testing.T) {
	r := NewRecord(1, "alice", 0)
	r.EndorsementCount = 1
	r.DecrementEndorsements()
	assert.Equal(t, uint64(0), r.EndorsementCount)
	// Clamps instead of wrapping.
	r.DecrementEndorsements()
	assert.Equal(t, uint64(0), r.EndorsementCount)
}
