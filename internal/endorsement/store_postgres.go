package endorsement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"repute/pkg/domain"
	"repute/pkg/sentinel"
)

// PostgresStore implements Store.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, domainID domain.DomainID, endorser, endorsee domain.Principal) (*Endorsement, error) {
	var (
		out       Endorsement
		tags      pq.StringArray
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT weight, message, tags, created_at, active
		FROM endorsements
		WHERE domain_id = $1 AND endorser = $2 AND endorsee = $3`,
		int64(domainID), string(endorser), string(endorsee),
	).Scan(&out.Weight, &out.Message, &tags, &createdAt, &out.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find endorsement: %w", err)
	}
	out.Domain = domainID
	out.Endorser = endorser
	out.Endorsee = endorsee
	out.Tags = tags
	out.CreatedAt = domain.LogicalTime(createdAt)
	return &out, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, e *Endorsement) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO endorsements (domain_id, endorser, endorsee, weight, message, tags, created_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (domain_id, endorser, endorsee) DO UPDATE SET
			weight = EXCLUDED.weight,
			message = EXCLUDED.message,
			tags = EXCLUDED.tags,
			created_at = EXCLUDED.created_at,
			active = EXCLUDED.active`,
		int64(e.Domain), string(e.Endorser), string(e.Endorsee), e.Weight,
		e.Message, pq.StringArray(e.Tags), int64(e.CreatedAt), e.Active,
	)
	if err != nil {
		return fmt.Errorf("upsert endorsement: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListActiveForEndorsee(ctx context.Context, domainID domain.DomainID, endorsee domain.Principal) ([]*Endorsement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT endorser, weight, message, tags, created_at
		FROM endorsements
		WHERE domain_id = $1 AND endorsee = $2 AND active`,
		int64(domainID), string(endorsee),
	)
	if err != nil {
		return nil, fmt.Errorf("list endorsements: %w", err)
	}
	defer rows.Close()

	var out []*Endorsement
	for rows.Next() {
		var (
			e         Endorsement
			endorser  string
			tags      pq.StringArray
			createdAt int64
		)
		if err := rows.Scan(&endorser, &e.Weight, &e.Message, &tags, &createdAt); err != nil {
			return nil, fmt.Errorf("scan endorsement: %w", err)
		}
		e.Domain = domainID
		e.Endorser = domain.Principal(endorser)
		e.Endorsee = endorsee
		e.Tags = tags
		e.CreatedAt = domain.LogicalTime(createdAt)
		e.Active = true
		out = append(out, &e)
	}
	return out, rows.Err()
}
