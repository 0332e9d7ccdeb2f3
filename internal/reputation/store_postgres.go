package reputation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"repute/pkg/domain"
	"repute/pkg/sentinel"
)

// PostgresStore persists reputation records with an ON CONFLICT upsert
// keyed by (domain_id, principal).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, domainID domain.DomainID, user domain.Principal) (*Record, error) {
	var (
		r                     Record
		score, eCount, aCount int64
		aggregate, updatedAt  int64
		tier, decayRate       int32
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT score, endorsement_count, activity_count, verification_tier,
			aggregate_score, updated_at, decay_rate_per_mille
		FROM reputation_records
		WHERE domain_id = $1 AND principal = $2`,
		int64(domainID), string(user),
	).Scan(&score, &eCount, &aCount, &tier, &aggregate, &updatedAt, &decayRate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find reputation record: %w", err)
	}
	r.Domain = domainID
	r.User = user
	r.Score = uint64(score)
	r.EndorsementCount = uint64(eCount)
	r.ActivityCount = uint64(aCount)
	r.VerificationTier = uint32(tier)
	r.AggregateScore = uint64(aggregate)
	r.UpdatedAt = domain.LogicalTime(updatedAt)
	r.DecayRatePerMille = uint32(decayRate)
	return &r, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, record *Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reputation_records (domain_id, principal, score, endorsement_count,
			activity_count, verification_tier, aggregate_score, updated_at, decay_rate_per_mille)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (domain_id, principal) DO UPDATE SET
			score = EXCLUDED.score,
			endorsement_count = EXCLUDED.endorsement_count,
			activity_count = EXCLUDED.activity_count,
			verification_tier = EXCLUDED.verification_tier,
			aggregate_score = EXCLUDED.aggregate_score,
			updated_at = EXCLUDED.updated_at,
			decay_rate_per_mille = EXCLUDED.decay_rate_per_mille`,
		int64(record.Domain), string(record.User), int64(record.Score),
		int64(record.EndorsementCount), int64(record.ActivityCount),
		int32(record.VerificationTier), int64(record.AggregateScore),
		int64(record.UpdatedAt), int32(record.DecayRatePerMille),
	)
	if err != nil {
		return fmt.Errorf("upsert reputation record: %w", err)
	}
	return nil
}
