package audit

import (
	"context"
	"database/sql"
	"fmt"

	"repute/pkg/domain"
)

// PostgresStore persists audit events in PostgreSQL via database/sql
// (lib/pq driver).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, category, action, domain_id, actor, subject, request_id, tick, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, string(event.Category), event.Action, int64(event.Domain),
		string(event.Actor), string(event.Subject), event.RequestID,
		int64(event.Tick), event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByActor(ctx context.Context, actor domain.Principal) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, action, domain_id, actor, subject, request_id, tick, created_at
		FROM audit_events
		WHERE actor = $1
		ORDER BY created_at`,
		string(actor),
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e                        Event
			category, actorCol, subj string
			domainID, tick           int64
		)
		if err := rows.Scan(&e.ID, &category, &e.Action, &domainID, &actorCol, &subj, &e.RequestID, &tick, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = Category(category)
		e.Domain = domain.DomainID(domainID)
		e.Actor = domain.Principal(actorCol)
		e.Subject = domain.Principal(subj)
		e.Tick = domain.LogicalTime(tick)
		out = append(out, e)
	}
	return out, rows.Err()
}
