package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"repute/pkg/domain"
	"repute/pkg/sentinel"
)

// PostgresStore persists domains in PostgreSQL. The domains.id column is a
// 0-based identity column, which preserves the global sequential allocation
// the memory store provides.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, d *Domain) (domain.DomainID, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO domains (name, description, admin, created_at, active,
			weight_endorsement, weight_activity, weight_verification, min_endorsements)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		d.Name, d.Description, string(d.Admin), int64(d.CreatedAt), d.Active,
		int32(d.WeightEndorsement), int32(d.WeightActivity), int32(d.WeightVerification),
		int32(d.MinEndorsements),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create domain: %w", err)
	}
	d.ID = domain.DomainID(id)
	return d.ID, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.DomainID) (*Domain, error) {
	var (
		d                  Domain
		rowID, createdAt   int64
		admin              string
		wE, wA, wV, minEnd int32
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, admin, created_at, active,
			weight_endorsement, weight_activity, weight_verification, min_endorsements
		FROM domains WHERE id = $1`,
		int64(id),
	).Scan(&rowID, &d.Name, &d.Description, &admin, &createdAt, &d.Active, &wE, &wA, &wV, &minEnd)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find domain: %w", err)
	}
	d.ID = domain.DomainID(rowID)
	d.Admin = domain.Principal(admin)
	d.CreatedAt = domain.LogicalTime(createdAt)
	d.WeightEndorsement = uint32(wE)
	d.WeightActivity = uint32(wA)
	d.WeightVerification = uint32(wV)
	d.MinEndorsements = uint32(minEnd)
	return &d, nil
}

func (s *PostgresStore) Exists(ctx context.Context, id domain.DomainID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM domains WHERE id = $1)`, int64(id),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("domain exists: %w", err)
	}
	return exists, nil
}
