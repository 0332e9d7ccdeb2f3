package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"repute/pkg/domain"
	"repute/pkg/sentinel"
)

// PostgresStore implements Store. ID allocation leans on the serializable
// transaction boundary: the next id is MAX+1 within the mutation's
// transaction, so ids stay dense and strictly increasing per domain.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, a *Activity) (domain.ActivityID, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO activities (domain_id, activity_id, "user", activity_type, created_at, value, data_hash, verified, verified_by)
		SELECT $1, COALESCE(MAX(activity_id) + 1, 0), $2, $3, $4, $5, $6, FALSE, ''
		FROM activities WHERE domain_id = $1
		RETURNING activity_id`,
		int64(a.Domain), string(a.User), a.Type, int64(a.CreatedAt), int64(a.Value), a.DataHash,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create activity: %w", err)
	}
	return domain.ActivityID(id), nil
}

func (s *PostgresStore) FindByID(ctx context.Context, domainID domain.DomainID, id domain.ActivityID) (*Activity, error) {
	var (
		out        Activity
		user       string
		createdAt  int64
		value      int64
		verifiedBy string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT "user", activity_type, created_at, value, data_hash, verified, verified_by
		FROM activities
		WHERE domain_id = $1 AND activity_id = $2`,
		int64(domainID), int64(id),
	).Scan(&user, &out.Type, &createdAt, &value, &out.DataHash, &out.Verified, &verifiedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find activity: %w", err)
	}
	out.Domain = domainID
	out.ID = id
	out.User = domain.Principal(user)
	out.CreatedAt = domain.LogicalTime(createdAt)
	out.Value = uint64(value)
	out.VerifiedBy = domain.Principal(verifiedBy)
	return &out, nil
}

func (s *PostgresStore) Update(ctx context.Context, a *Activity) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE activities
		SET verified = $3, verified_by = $4
		WHERE domain_id = $1 AND activity_id = $2`,
		int64(a.Domain), int64(a.ID), a.Verified, string(a.VerifiedBy),
	)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, domainID domain.DomainID, user domain.Principal) ([]*Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT activity_id, activity_type, created_at, value, data_hash, verified, verified_by
		FROM activities
		WHERE domain_id = $1 AND "user" = $2
		ORDER BY activity_id DESC`,
		int64(domainID), string(user),
	)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var out []*Activity
	for rows.Next() {
		var (
			a          Activity
			id         int64
			createdAt  int64
			value      int64
			verifiedBy string
		)
		if err := rows.Scan(&id, &a.Type, &createdAt, &value, &a.DataHash, &a.Verified, &verifiedBy); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a.Domain = domainID
		a.ID = domain.ActivityID(id)
		a.User = user
		a.CreatedAt = domain.LogicalTime(createdAt)
		a.Value = uint64(value)
		a.VerifiedBy = domain.Principal(verifiedBy)
		out = append(out, &a)
	}
	return out, rows.Err()
}
