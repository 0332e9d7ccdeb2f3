package privacy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"repute/pkg/domain"
	"repute/pkg/sentinel"
)

// PostgresSettings implements SettingsStore. Viewer lists are stored as a
// text array; the cap is enforced by the validation layer before any write.
type PostgresSettings struct {
	db *sql.DB
}

func NewPostgresSettings(db *sql.DB) *PostgresSettings {
	return &PostgresSettings{db: db}
}

func (s *PostgresSettings) Find(ctx context.Context, domainID domain.DomainID, owner domain.Principal) (*Settings, error) {
	var (
		out       Settings
		viewers   pq.StringArray
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT show_score, show_endorsements, show_activities, show_verifications,
			authorized_viewers, updated_at
		FROM privacy_settings
		WHERE domain_id = $1 AND owner = $2`,
		int64(domainID), string(owner),
	).Scan(&out.ShowScore, &out.ShowEndorsements, &out.ShowActivities,
		&out.ShowVerifications, &viewers, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find privacy settings: %w", err)
	}
	out.Domain = domainID
	out.Owner = owner
	out.UpdatedAt = domain.LogicalTime(updatedAt)
	for _, v := range viewers {
		out.AuthorizedViewers = append(out.AuthorizedViewers, domain.Principal(v))
	}
	return &out, nil
}

func (s *PostgresSettings) Upsert(ctx context.Context, settings *Settings) error {
	viewers := make(pq.StringArray, 0, len(settings.AuthorizedViewers))
	for _, v := range settings.AuthorizedViewers {
		viewers = append(viewers, string(v))
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO privacy_settings (domain_id, owner, show_score, show_endorsements,
			show_activities, show_verifications, authorized_viewers, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (domain_id, owner) DO UPDATE SET
			show_score = EXCLUDED.show_score,
			show_endorsements = EXCLUDED.show_endorsements,
			show_activities = EXCLUDED.show_activities,
			show_verifications = EXCLUDED.show_verifications,
			authorized_viewers = EXCLUDED.authorized_viewers,
			updated_at = EXCLUDED.updated_at`,
		int64(settings.Domain), string(settings.Owner), settings.ShowScore,
		settings.ShowEndorsements, settings.ShowActivities, settings.ShowVerifications,
		viewers, int64(settings.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert privacy settings: %w", err)
	}
	return nil
}

// PostgresDelegations implements DelegationStore.
type PostgresDelegations struct {
	db *sql.DB
}

func NewPostgresDelegations(db *sql.DB) *PostgresDelegations {
	return &PostgresDelegations{db: db}
}

func (s *PostgresDelegations) Find(ctx context.Context, domainID domain.DomainID, owner domain.Principal) (*Delegation, error) {
	var (
		out         Delegation
		proxy       string
		delegatedAt int64
		expiresAt   sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT proxy, delegated_at, expires_at, active
		FROM delegations
		WHERE domain_id = $1 AND owner = $2`,
		int64(domainID), string(owner),
	).Scan(&proxy, &delegatedAt, &expiresAt, &out.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find delegation: %w", err)
	}
	out.Domain = domainID
	out.Owner = owner
	out.Proxy = domain.Principal(proxy)
	out.DelegatedAt = domain.LogicalTime(delegatedAt)
	if expiresAt.Valid {
		t := domain.LogicalTime(expiresAt.Int64)
		out.ExpiresAt = &t
	}
	return &out, nil
}

func (s *PostgresDelegations) Upsert(ctx context.Context, delegation *Delegation) error {
	var expiresAt sql.NullInt64
	if delegation.ExpiresAt != nil {
		expiresAt = sql.NullInt64{Int64: int64(*delegation.ExpiresAt), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO delegations (domain_id, owner, proxy, delegated_at, expires_at, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (domain_id, owner) DO UPDATE SET
			proxy = EXCLUDED.proxy,
			delegated_at = EXCLUDED.delegated_at,
			expires_at = EXCLUDED.expires_at,
			active = EXCLUDED.active`,
		int64(delegation.Domain), string(delegation.Owner), string(delegation.Proxy),
		int64(delegation.DelegatedAt), expiresAt, delegation.Active,
	)
	if err != nil {
		return fmt.Errorf("upsert delegation: %w", err)
	}
	return nil
}
