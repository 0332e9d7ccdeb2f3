package reputation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"repute/internal/platform/metrics"
	"repute/internal/registry"
	"repute/pkg/domain"
	dErrors "repute/pkg/domainerrors"
	"repute/pkg/sentinel"
)

// Domains is the slice of the domain registry the ledger needs.
type Domains interface {
	FindByID(ctx context.Context, id domain.DomainID) (*registry.Domain, error)
}

// AccessGate answers whether a viewer may read an owner's score. Implemented
// by the privacy layer; the ledger never inspects privacy records itself.
type AccessGate interface {
	CanViewScore(ctx context.Context, domainID domain.DomainID, owner, viewer domain.Principal) (bool, error)
}

// ScoreView is the privacy-gated read model for a user's reputation.
type ScoreView struct {
	Domain           domain.DomainID    `json:"domain_id"`
	User             domain.Principal   `json:"user"`
	Score            uint64             `json:"score"`
	EndorsementCount uint64             `json:"endorsement_count"`
	ActivityCount    uint64             `json:"activity_count"`
	VerificationTier uint32             `json:"verification_tier"`
	UpdatedAt        domain.LogicalTime `json:"updated_at"`
}

// Ledger owns the per-(domain, user) reputation records. Every mutation in
// the engine funnels through Apply, which recomputes the affected user's
// score as its last step. Only that user's score is touched, never a batch.
type Ledger struct {
	records Store
	domains Domains
	gate    AccessGate
	cache   *Cache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type LedgerOption func(*Ledger)

func WithCache(c *Cache) LedgerOption {
	return func(l *Ledger) { l.cache = c }
}

func WithMetrics(m *metrics.Metrics) LedgerOption {
	return func(l *Ledger) { l.metrics = m }
}

// NewLedger constructs the ledger. The gate may be nil only in tests that
// bypass reads.
func NewLedger(records Store, domains Domains, gate AccessGate, logger *slog.Logger, opts ...LedgerOption) *Ledger {
	l := &Ledger{records: records, domains: domains, gate: gate, logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Apply loads or lazily creates the user's record, applies mutate to its
// counters, recomputes aggregate and decayed scores under the domain policy,
// and upserts the result. Callers are responsible for validation and
// authorization before calling; Apply is the write path's final step.
func (l *Ledger) Apply(ctx context.Context, dom *registry.Domain, user domain.Principal,
	now domain.LogicalTime, mutate func(*Record)) (*Record, error) {

	start := time.Now()
	record, err := l.records.Find(ctx, dom.ID, user)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reputation record")
		}
		record = NewRecord(dom.ID, user, now)
	}

	mutate(record)
	Recompute(dom, record, now)

	if err := l.records.Upsert(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store reputation record")
	}
	l.cache.Invalidate(ctx, dom.ID, user)
	l.metrics.ObserveScoreRecompute(start)
	return record, nil
}

// GetScore returns the stored (decayed) score for a user. Access: the owner
// always; otherwise the privacy gate decides (show-score flag defaults open,
// an explicit opt-out closes it to everyone but listed viewers and active
// proxies).
func (l *Ledger) GetScore(ctx context.Context, caller domain.Principal,
	domainID domain.DomainID, user domain.Principal) (*ScoreView, error) {

	if _, err := l.domains.FindByID(ctx, domainID); err != nil {
		return nil, translateDomainErr(err)
	}

	if caller != user {
		allowed, err := l.gate.CanViewScore(ctx, domainID, user, caller)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "score is not visible to caller")
		}
	}

	if view, ok := l.cache.Get(ctx, domainID, user); ok {
		return view, nil
	}

	record, err := l.records.Find(ctx, domainID, user)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no reputation record for user")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reputation record")
	}

	view := &ScoreView{
		Domain:           record.Domain,
		User:             record.User,
		Score:            record.Score,
		EndorsementCount: record.EndorsementCount,
		ActivityCount:    record.ActivityCount,
		VerificationTier: record.VerificationTier,
		UpdatedAt:        record.UpdatedAt,
	}
	l.cache.Set(ctx, view)
	return view, nil
}

func translateDomainErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeInvalidDomain, "domain does not exist")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load domain")
}
