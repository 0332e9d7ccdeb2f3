package activity

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

// Authorizer answers whether a principal holds an active verifier-provider
// grant in a domain. Implemented by the verification service.
type Authorizer interface {
	IsAuthorizedVerifier(ctx context.Context, domainID domain.DomainID, principal domain.Principal) (bool, error)
}

// AccessGate answers whether a viewer may read an owner's activity log.
type AccessGate interface {
	CanViewActivities(ctx context.Context, domainID domain.DomainID, owner, viewer domain.Principal) (bool, error)
}

// AuditPublisher captures mutation events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the per-domain activity log.
type Service struct {
	activities Store
	domains    Domains
	scores     Scores
	authorizer Authorizer
	gate       AccessGate
	clock      clock.Clock
	tx         tx.Runner
	audit      AuditPublisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func NewService(activities Store, domains Domains, scores Scores, authorizer Authorizer,
	gate AccessGate, clk clock.Clock, runner tx.Runner, publisher AuditPublisher,
	logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		activities: activities,
		domains:    domains,
		scores:     scores,
		authorizer: authorizer,
		gate:       gate,
		clock:      clk,
		tx:         runner,
		audit:      publisher,
		logger:     logger,
		metrics:    m,
	}
}

// RecordActivity appends an unverified activity for the caller, increments
// the caller's activity count, and returns the allocated id. The domain must
// be active.
func (s *Service) RecordActivity(ctx context.Context, caller domain.Principal,
	domainID domain.DomainID, activityType string, value uint64, dataHash string) (domain.ActivityID, error) {

	dom, err := s.domains.FindByID(ctx, domainID)
	if err != nil {
		return 0, translateDomainErr(err)
	}
	if !dom.Active {
		return 0, dErrors.New(dErrors.CodeInvalidDomain, "domain is not active")
	}

	var id domain.ActivityID
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		a, err := NewActivity(domainID, caller, activityType, now, value, dataHash)
		if err != nil {
			return err
		}

		id, err = s.activities.Create(ctx, a)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store activity")
		}

		if _, err := s.scores.Apply(ctx, dom, caller, now, func(r *reputation.Record) {
			r.ActivityCount++
		}); err != nil {
			return err
		}

		s.emit(ctx, audit.ActionActivityRecorded, domainID, caller, caller, now)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.IncActivitiesRecorded()
	return id, nil
}

// VerifyActivity marks an activity verified with the caller as verifier and
// returns the activity owner's recomputed score. The caller must be the
// domain admin or an active verifier-provider. Verification is a provenance
// mark; the score moves only because the owner's record is recomputed, which
// also refreshes decay.
func (s *Service) VerifyActivity(ctx context.Context, caller domain.Principal,
	domainID domain.DomainID, id domain.ActivityID) (uint64, error) {

	dom, err := s.domains.FindByID(ctx, domainID)
	if err != nil {
		return 0, translateDomainErr(err)
	}
	if !dom.IsAdmin(caller) {
		authorized, err := s.authorizer.IsAuthorizedVerifier(ctx, domainID, caller)
		if err != nil {
			return 0, err
		}
		if !authorized {
			return 0, dErrors.New(dErrors.CodeUnauthorized, "caller cannot verify activities in this domain")
		}
	}

	var score uint64
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		a, err := s.activities.FindByID(ctx, domainID, id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "activity does not exist")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load activity")
		}
		if a.Verified {
			return dErrors.New(dErrors.CodeConflict, "activity is already verified")
		}

		a.Verified = true
		a.VerifiedBy = caller
		if err := s.activities.Update(ctx, a); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store activity")
		}

		now := s.clock.Now()
		record, err := s.scores.Apply(ctx, dom, a.User, now, func(*reputation.Record) {})
		if err != nil {
			return err
		}
		score = record.Score

		s.emit(ctx, audit.ActionActivityVerified, domainID, caller, a.User, now)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return score, nil
}

// GetUserActivities returns a principal's activity log, newest first.
// Access: the owner always; otherwise the privacy gate decides (the
// show-activities flag defaults closed).
func (s *Service) GetUserActivities(ctx context.Context, caller domain.Principal,
	domainID domain.DomainID, user domain.Principal) ([]*Activity, error) {

	if _, err := s.domains.FindByID(ctx, domainID); err != nil {
		return nil, translateDomainErr(err)
	}

	if caller != user {
		allowed, err := s.gate.CanViewActivities(ctx, domainID, user, caller)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "activities are not visible to caller")
		}
	}

	list, err := s.activities.ListByUser(ctx, domainID, user)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list activities")
	}
	return list, nil
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
