package endorsement

import (
	"context"
	"errors"
	"log/slog"

	"repute/internal/audit"
	"repute/internal/platform/metrics"
	"repute/internal/registry"
	"repute/internal/reputation"
	"repute/pkg/clock"
	"repute/pkg/domain"
	dErrors "repute/pkg/domainerrors"
	"repute/pkg/requestcontext"
	"repute/pkg/sentinel"
	"repute/pkg/tx"
)

// Domains is the slice of the domain registry this service needs.
type Domains interface {
	FindByID(ctx context.Context, id domain.DomainID) (*registry.Domain, error)
}

// Scores is the reputation ledger's write path.
type Scores interface {
	Apply(ctx context.Context, dom *registry.Domain, user domain.Principal,
		now domain.LogicalTime, mutate func(*reputation.Record)) (*reputation.Record, error)
}

// AccessGate answers whether a viewer may read an owner's endorsement list.
type AccessGate interface {
	CanViewEndorsements(ctx context.Context, domainID domain.DomainID, owner, viewer domain.Principal) (bool, error)
}

// AuditPublisher captures mutation events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the endorsement ledger. An endorsement only moves the
// endorsee's score through the reputation ledger; the endorser's own record
// is never touched.
type Service struct {
	endorsements Store
	domains      Domains
	scores       Scores
	gate         AccessGate
	clock        clock.Clock
	tx           tx.Runner
	audit        AuditPublisher
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

func NewService(endorsements Store, domains Domains, scores Scores, gate AccessGate,
	clk clock.Clock, runner tx.Runner, publisher AuditPublisher,
	logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		endorsements: endorsements,
		domains:      domains,
		scores:       scores,
		gate:         gate,
		clock:        clk,
		tx:           runner,
		audit:        publisher,
		logger:       logger,
		metrics:      m,
	}
}

// Endorse records or overwrites the caller's endorsement of another principal
// and returns the endorsee's recomputed score. Re-endorsing an existing
// active endorsement replaces its weight, message, and tags without changing
// the endorsee's endorsement count; endorsing after a removal reactivates the
// pair and counts again.
func (s *Service) Endorse(ctx context.Context, caller domain.Principal,
	domainID domain.DomainID, endorsee domain.Principal,
	weight uint32, message string, tags []string) (uint64, error) {

	dom, err := s.requireActiveDomain(ctx, domainID)
	if err != nil {
		return 0, err
	}

	var score uint64
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		e, err := NewEndorsement(domainID, caller, endorsee, weight, message, tags, now)
		if err != nil {
			return err
		}

		existing, err := s.endorsements.Find(ctx, domainID, caller, endorsee)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load endorsement")
		}
		hadActive := err == nil && existing.Active
		if hadActive {
			e.CreatedAt = existing.CreatedAt
		}

		if err := s.endorsements.Upsert(ctx, e); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store endorsement")
		}

		record, err := s.scores.Apply(ctx, dom, endorsee, now, func(r *reputation.Record) {
			if !hadActive {
				r.EndorsementCount++
			}
		})
		if err != nil {
			return err
		}
		score = record.Score

		s.emit(ctx, audit.ActionUserEndorsed, domainID, caller, endorsee, now)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.IncEndorsementsRecorded()
	return score, nil
}

// RemoveEndorsement soft-deletes the caller's active endorsement of a
// principal and returns the endorsee's recomputed score. Removal is allowed
// on inactive domains; only new endorsements are gated on domain activity.
func (s *Service) RemoveEndorsement(ctx context.Context, caller domain.Principal,
	domainID domain.DomainID, endorsee domain.Principal) (uint64, error) {

	dom, err := s.domains.FindByID(ctx, domainID)
	if err != nil {
		return 0, translateDomainErr(err)
	}

	var score uint64
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.endorsements.Find(ctx, domainID, caller, endorsee)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "no active endorsement to remove")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load endorsement")
		}
		if !existing.Active {
			return dErrors.New(dErrors.CodeNotFound, "no active endorsement to remove")
		}

		existing.Active = false
		if err := s.endorsements.Upsert(ctx, existing); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store endorsement")
		}

		now := s.clock.Now()
		record, err := s.scores.Apply(ctx, dom, endorsee, now, func(r *reputation.Record) {
			r.DecrementEndorsements()
		})
		if err != nil {
			return err
		}
		score = record.Score

		s.emit(ctx, audit.ActionEndorsementRemoved, domainID, caller, endorsee, now)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return score, nil
}

// GetUserEndorsements returns the active endorsements a principal has
// received. Access: the owner always; otherwise the privacy gate decides
// (the show-endorsements flag defaults open).
func (s *Service) GetUserEndorsements(ctx context.Context, caller domain.Principal,
	domainID domain.DomainID, user domain.Principal) ([]*Endorsement, error) {

	if _, err := s.domains.FindByID(ctx, domainID); err != nil {
		return nil, translateDomainErr(err)
	}

	if caller != user {
		allowed, err := s.gate.CanViewEndorsements(ctx, domainID, user, caller)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "endorsements are not visible to caller")
		}
	}

	list, err := s.endorsements.ListActiveForEndorsee(ctx, domainID, user)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list endorsements")
	}
	return list, nil
}

func (s *Service) requireActiveDomain(ctx context.Context, domainID domain.DomainID) (*registry.Domain, error) {
	dom, err := s.domains.FindByID(ctx, domainID)
	if err != nil {
		return nil, translateDomainErr(err)
	}
	if !dom.Active {
		return nil, dErrors.New(dErrors.CodeInvalidDomain, "domain is not active")
	}
	return dom, nil
}

func (s *Service) emit(ctx context.Context, action string, domainID domain.DomainID,
	actor, subject domain.Principal, now domain.LogicalTime) {

	if s.logger != nil {
		s.logger.InfoContext(ctx, action,
			"log_type", "audit",
			"domain_id", domainID,
			"actor", actor,
			"subject", subject,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if s.audit != nil {
		_ = s.audit.Emit(ctx, audit.Event{
			Category:  audit.CategoryOperations,
			Action:    action,
			Domain:    domainID,
			Actor:     actor,
			Subject:   subject,
			RequestID: requestcontext.RequestID(ctx),
			Tick:      now,
		})
	}
}

func translateDomainErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeInvalidDomain, "domain does not exist")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load domain")
}
