package verification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"repute/pkg/domain"
	"repute/pkg/sentinel"
)

// PostgresProviders implements ProviderStore.
type PostgresProviders struct {
	db *sql.DB
}

func NewPostgresProviders(db *sql.DB) *PostgresProviders {
	return &PostgresProviders{db: db}
}

func (s *PostgresProviders) Find(ctx context.Context, domainID domain.DomainID, provider domain.Principal) (*Provider, error) {
	var (
		out          Provider
		authorizedBy string
		authorizedAt int64
		types        pq.StringArray
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT name, authorized_by, authorized_at, allowed_types, active
		FROM verifier_providers
		WHERE domain_id = $1 AND provider = $2`,
		int64(domainID), string(provider),
	).Scan(&out.Name, &authorizedBy, &authorizedAt, &types, &out.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find provider: %w", err)
	}
	out.Domain = domainID
	out.Provider = provider
	out.AuthorizedBy = domain.Principal(authorizedBy)
	out.AuthorizedAt = domain.LogicalTime(authorizedAt)
	out.AllowedTypes = types
	return &out, nil
}

func (s *PostgresProviders) Upsert(ctx context.Context, p *Provider) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verifier_providers (domain_id, provider, name, authorized_by, authorized_at, allowed_types, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (domain_id, provider) DO UPDATE SET
			name = EXCLUDED.name,
			authorized_by = EXCLUDED.authorized_by,
			authorized_at = EXCLUDED.authorized_at,
			allowed_types = EXCLUDED.allowed_types,
			active = EXCLUDED.active`,
		int64(p.Domain), string(p.Provider), p.Name, string(p.AuthorizedBy),
		int64(p.AuthorizedAt), pq.StringArray(p.AllowedTypes), p.Active,
	)
	if err != nil {
		return fmt.Errorf("upsert provider: %w", err)
	}
	return nil
}

// PostgresStore implements Store.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, domainID domain.DomainID, user domain.Principal, verificationType string) (*Verification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT verifier, verified_at, expires_at, evidence_hash, level, active
		FROM verifications
		WHERE domain_id = $1 AND "user" = $2 AND verification_type = $3`,
		int64(domainID), string(user), verificationType,
	)
	v, err := scanVerification(row)
	if err != nil {
		return nil, err
	}
	v.Domain = domainID
	v.User = user
	v.Type = verificationType
	return v, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, v *Verification) error {
	var expiresAt sql.NullInt64
	if v.ExpiresAt != nil {
		expiresAt = sql.NullInt64{Int64: int64(*v.ExpiresAt), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verifications (domain_id, "user", verification_type, verifier, verified_at, expires_at, evidence_hash, level, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (domain_id, "user", verification_type) DO UPDATE SET
			verifier = EXCLUDED.verifier,
			verified_at = EXCLUDED.verified_at,
			expires_at = EXCLUDED.expires_at,
			evidence_hash = EXCLUDED.evidence_hash,
			level = EXCLUDED.level,
			active = EXCLUDED.active`,
		int64(v.Domain), string(v.User), v.Type, string(v.Verifier),
		int64(v.VerifiedAt), expiresAt, v.EvidenceHash, v.Level, v.Active,
	)
	if err != nil {
		return fmt.Errorf("upsert verification: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListActiveByUser(ctx context.Context, domainID domain.DomainID, user domain.Principal) ([]*Verification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT verification_type, verifier, verified_at, expires_at, evidence_hash, level
		FROM verifications
		WHERE domain_id = $1 AND "user" = $2 AND active`,
		int64(domainID), string(user),
	)
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	defer rows.Close()

	var out []*Verification
	for rows.Next() {
		var (
			v          Verification
			verifier   string
			verifiedAt int64
			expiresAt  sql.NullInt64
		)
		if err := rows.Scan(&v.Type, &verifier, &verifiedAt, &expiresAt, &v.EvidenceHash, &v.Level); err != nil {
			return nil, fmt.Errorf("scan verification: %w", err)
		}
		v.Domain = domainID
		v.User = user
		v.Verifier = domain.Principal(verifier)
		v.VerifiedAt = domain.LogicalTime(verifiedAt)
		if expiresAt.Valid {
			t := domain.LogicalTime(expiresAt.Int64)
			v.ExpiresAt = &t
		}
		v.Active = true
		out = append(out, &v)
	}
	return out, rows.Err()
}

func scanVerification(row *sql.Row) (*Verification, error) {
	var (
		v          Verification
		verifier   string
		verifiedAt int64
		expiresAt  sql.NullInt64
	)
	err := row.Scan(&verifier, &verifiedAt, &expiresAt, &v.EvidenceHash, &v.Level, &v.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification: %w", err)
	}
	v.Verifier = domain.Principal(verifier)
	v.VerifiedAt = domain.LogicalTime(verifiedAt)
	if expiresAt.Valid {
		t := domain.LogicalTime(expiresAt.Int64)
		v.ExpiresAt = &t
	}
	return &v, nil
}
