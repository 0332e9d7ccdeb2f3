package verification

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

// AccessGate answers whether a viewer may read an owner's verifications.
type AccessGate interface {
	CanViewVerifications(ctx context.Context, domainID domain.DomainID, owner, viewer domain.Principal) (bool, error)
}

// AuditPublisher captures mutation events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the verification and provider registries. Verification
// operations are not gated on domain activity: an inactive domain stops new
// endorsements and activities but attestations stay manageable.
type Service struct {
	verifications Store
	providers     ProviderStore
	domains       Domains
	scores        Scores
	gate          AccessGate
	clock         clock.Clock
	tx            tx.Runner
	audit         AuditPublisher
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

func NewService(verifications Store, providers ProviderStore, domains Domains,
	scores Scores, gate AccessGate, clk clock.Clock, runner tx.Runner,
	publisher AuditPublisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		verifications: verifications,
		providers:     providers,
		domains:       domains,
		scores:        scores,
		gate:          gate,
		clock:         clk,
		tx:            runner,
		audit:         publisher,
		logger:        logger,
		metrics:       m,
	}
}

// AddVerifierProvider grants a principal the right to issue verifications of
// the listed types. Admin-only; re-granting overwrites the previous grant.
func (s *Service) AddVerifierProvider(ctx context.Context, caller domain.Principal,
	domainID domain.DomainID, provider domain.Principal, name string, allowedTypes []string) error {

	dom, err := s.requireDomain(ctx, domainID)
	if err != nil {
		return err
	}
	if !dom.IsAdmin(caller) {
		return dErrors.New(dErrors.CodeUnauthorized, "only the domain admin can authorize providers")
	}

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		grant, err := NewProvider(domainID, provider, name, caller, now, allowedTypes)
		if err != nil {
			return err
		}
		if err := s.providers.Upsert(ctx, grant); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store provider grant")
		}
		s.emit(ctx, audit.ActionProviderAuthorized, domainID, caller, provider, now)
		return nil
	})
}

// RevokeVerifierProvider withdraws a provider grant with immediate effect.
// The grant record stays for audit. Admin-only.
func (s *Service) RevokeVerifierProvider(ctx context.Context, caller domain.Principal,
	domainID domain.DomainID, provider domain.Principal) error {

	dom, err := s.requireDomain(ctx, domainID)
	if err != nil {
		return err
	}
	if !dom.IsAdmin(caller) {
		return dErrors.New(dErrors.CodeUnauthorized, "only the domain admin can revoke providers")
	}

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		grant, err := s.providers.Find(ctx, domainID, provider)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "no provider grant to revoke")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load provider grant")
		}
		if !grant.Active {
			return dErrors.New(dErrors.CodeNotFound, "no active provider grant to revoke")
		}

		grant.Active = false
		if err := s.providers.Upsert(ctx, grant); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store provider grant")
		}
		s.emit(ctx, audit.ActionProviderRevoked, domainID, caller, provider, s.clock.Now())
		return nil
	})
}

// IsAuthorizedVerifier reports whether an active provider grant exists for
// the principal in the domain.
func (s *Service) IsAuthorizedVerifier(ctx context.Context, domainID domain.DomainID,
	principal domain.Principal) (bool, error) {

	grant, err := s.providers.Find(ctx, domainID, principal)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load provider grant")
	}
	return grant.Active, nil
}

// AddVerification issues or overwrites an attestation for (user, type) and
// returns the user's recomputed score. The caller must be the domain admin or
// an active provider whose grant covers the type. The user's tier only ever
// rises here: tier = max(current, level).
func (s *Service) AddVerification(ctx context.Context, caller domain.Principal,
	domainID domain.DomainID, user domain.Principal, verificationType string,
	evidenceHash string, level uint32, expiresAt *domain.LogicalTime) (uint64, error) {

	dom, err := s.requireDomain(ctx, domainID)
	if err != nil {
		return 0, err
	}
	if err := s.requireVerifier(ctx, dom, caller, verificationType); err != nil {
		return 0, err
	}

	var score uint64
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		v, err := NewVerification(domainID, user, verificationType, caller, now, expiresAt, evidenceHash, level)
		if err != nil {
			return err
		}
		if err := s.verifications.Upsert(ctx, v); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store verification")
		}

		record, err := s.scores.Apply(ctx, dom, user, now, func(r *reputation.Record) {
			if level > r.VerificationTier {
				r.VerificationTier = level
			}
		})
		if err != nil {
			return err
		}
		score = record.Score

		s.emit(ctx, audit.ActionVerificationAdded, domainID, caller, user, now)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.IncVerificationsIssued()
	return score, nil
}

// RevokeVerification marks an attestation inactive and returns the user's
// recomputed score. Only the original verifier may revoke. The tier is
// recomputed as the maximum level over the user's remaining live
// verifications, so revoking the sole top-level attestation drops the tier.
func (s *Service) RevokeVerification(ctx context.Context, caller domain.Principal,
	domainID domain.DomainID, user domain.Principal, verificationType string) (uint64, error) {

	dom, err := s.requireDomain(ctx, domainID)
	if err != nil {
		return 0, err
	}

	var score uint64
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		v, err := s.verifications.Find(ctx, domainID, user, verificationType)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "no verification to revoke")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification")
		}
		if !v.Active {
			return dErrors.New(dErrors.CodeNotFound, "no active verification to revoke")
		}
		if v.Verifier != caller {
			return dErrors.New(dErrors.CodeUnauthorized, "only the original verifier can revoke")
		}

		v.Active = false
		if err := s.verifications.Upsert(ctx, v); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store verification")
		}

		now := s.clock.Now()
		tier, err := s.recomputeTier(ctx, domainID, user, now)
		if err != nil {
			return err
		}

		record, err := s.scores.Apply(ctx, dom, user, now, func(r *reputation.Record) {
			r.VerificationTier = tier
		})
		if err != nil {
			return err
		}
		score = record.Score

		s.emit(ctx, audit.ActionVerificationRevoked, domainID, caller, user, now)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return score, nil
}

// GetVerifications returns a user's active verifications. Access: the owner
// always; otherwise the privacy gate decides (the show-verifications flag
// defaults closed).
func (s *Service) GetVerifications(ctx context.Context, caller domain.Principal,
	domainID domain.DomainID, user domain.Principal) ([]*Verification, error) {

	if _, err := s.requireDomain(ctx, domainID); err != nil {
		return nil, err
	}

	if caller != user {
		allowed, err := s.gate.CanViewVerifications(ctx, domainID, user, caller)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "verifications are not visible to caller")
		}
	}

	list, err := s.verifications.ListActiveByUser(ctx, domainID, user)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list verifications")
	}
	return list, nil
}

// recomputeTier takes the maximum level over the user's live verifications.
func (s *Service) recomputeTier(ctx context.Context, domainID domain.DomainID,
	user domain.Principal, now domain.LogicalTime) (uint32, error) {

	remaining, err := s.verifications.ListActiveByUser(ctx, domainID, user)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list verifications")
	}
	var tier uint32
	for _, v := range remaining {
		if v.IsLive(now) && v.Level > tier {
			tier = v.Level
		}
	}
	return tier, nil
}

// requireVerifier checks the admin capability or an active provider grant
// covering the verification type.
func (s *Service) requireVerifier(ctx context.Context, dom *registry.Domain,
	caller domain.Principal, verificationType string) error {

	if dom.IsAdmin(caller) {
		return nil
	}
	grant, err := s.providers.Find(ctx, dom.ID, caller)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnauthorized, "caller is not an authorized verifier")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load provider grant")
	}
	if !grant.Active || !grant.Allows(verificationType) {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not authorized for this verification type")
	}
	return nil
}

func (s *Service) requireDomain(ctx context.Context, domainID domain.DomainID) (*registry.Domain, error) {
	dom, err := s.domains.FindByID(ctx, domainID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInvalidDomain, "domain does not exist")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load domain")
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
			Category:  audit.CategoryCompliance,
			Action:    action,
			Domain:    domainID,
			Actor:     actor,
			Subject:   subject,
			RequestID: requestcontext.RequestID(ctx),
			Tick:      now,
		})
	}
}
