package privacy

import (
	"context"
	"errors"
	"log/slog"

	"repute/internal/audit"
	"repute/internal/validate"
	"repute/pkg/clock"
	"repute/pkg/domain"
	dErrors "repute/pkg/domainerrors"
	"repute/pkg/requestcontext"
	"repute/pkg/sentinel"
	"repute/pkg/tx"
)

// Domains is the slice of the domain registry this service needs.
type Domains interface {
	Exists(ctx context.Context, id domain.DomainID) (bool, error)
}

// AuditPublisher captures mutation events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// SettingsUpdate is a full overwrite of a user's visibility settings.
type SettingsUpdate struct {
	ShowScore         bool
	ShowEndorsements  bool
	ShowActivities    bool
	ShowVerifications bool
	AuthorizedViewers []domain.Principal
}

// Service is the delegation and privacy layer: it stores visibility flags
// and viewer allow-lists, answers the access-gate queries every read path
// consults, and manages ownership delegations (a live proxy acts with the
// owner's rights at this layer).
type Service struct {
	settings    SettingsStore
	delegations DelegationStore
	domains     Domains
	clock       clock.Clock
	tx          tx.Runner
	audit       AuditPublisher
	logger      *slog.Logger
}

func NewService(settings SettingsStore, delegations DelegationStore, domains Domains,
	clk clock.Clock, runner tx.Runner, publisher AuditPublisher, logger *slog.Logger) *Service {
	return &Service{
		settings:    settings,
		delegations: delegations,
		domains:     domains,
		clock:       clk,
		tx:          runner,
		audit:       publisher,
		logger:      logger,
	}
}

// UpdateSettings overwrites the owner's settings. The owner may write their
// own record; a live proxy may write it on the owner's behalf.
func (s *Service) UpdateSettings(ctx context.Context, caller domain.Principal,
	domainID domain.DomainID, owner domain.Principal, update SettingsUpdate) error {

	if err := s.requireDomain(ctx, domainID); err != nil {
		return err
	}
	if err := validate.Viewers(update.AuthorizedViewers); err != nil {
		return err
	}

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if caller != owner {
			live, err := s.isLiveProxy(ctx, domainID, owner, caller)
			if err != nil {
				return err
			}
			if !live {
				return dErrors.New(dErrors.CodeUnauthorized, "only the owner or their proxy may update privacy settings")
			}
		}

		now := s.clock.Now()
		settings := &Settings{
			Domain:            domainID,
			Owner:             owner,
			ShowScore:         update.ShowScore,
			ShowEndorsements:  update.ShowEndorsements,
			ShowActivities:    update.ShowActivities,
			ShowVerifications: update.ShowVerifications,
			AuthorizedViewers: update.AuthorizedViewers,
			UpdatedAt:         now,
		}
		if err := s.settings.Upsert(ctx, settings); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store privacy settings")
		}
		s.emit(ctx, audit.CategoryOperations, audit.ActionPrivacyUpdated, domainID, caller, owner, now)
		return nil
	})
}

// GetSettings returns the owner's settings, or the documented defaults when
// no record exists. Visible to the owner and a live proxy only.
func (s *Service) GetSettings(ctx context.Context, caller domain.Principal,
	domainID domain.DomainID, owner domain.Principal) (*Settings, error) {

	if err := s.requireDomain(ctx, domainID); err != nil {
		return nil, err
	}
	if caller != owner {
		live, err := s.isLiveProxy(ctx, domainID, owner, caller)
		if err != nil {
			return nil, err
		}
		if !live {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "privacy settings are visible to the owner only")
		}
	}

	settings, err := s.settings.Find(ctx, domainID, owner)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return DefaultSettings(domainID, owner), nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load privacy settings")
	}
	return settings, nil
}

// Delegate records the caller's proxy, overwriting any previous delegation
// in place.
func (s *Service) Delegate(ctx context.Context, caller domain.Principal,
	domainID domain.DomainID, proxy domain.Principal, expiresAt *domain.LogicalTime) error {

	if err := s.requireDomain(ctx, domainID); err != nil {
		return err
	}
	if proxy.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "proxy is required")
	}
	if proxy == caller {
		return dErrors.New(dErrors.CodeSelfReference, "cannot delegate to yourself")
	}

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		delegation := &Delegation{
			Domain:      domainID,
			Owner:       caller,
			Proxy:       proxy,
			DelegatedAt: now,
			ExpiresAt:   expiresAt,
			Active:      true,
		}
		if err := s.delegations.Upsert(ctx, delegation); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store delegation")
		}
		s.emit(ctx, audit.CategoryCompliance, audit.ActionDelegationCreated, domainID, caller, proxy, now)
		return nil
	})
}

// RemoveDelegation soft-deletes the caller's delegation; the record stays
// for audit with authority revoked immediately.
func (s *Service) RemoveDelegation(ctx context.Context, caller domain.Principal, domainID domain.DomainID) error {
	if err := s.requireDomain(ctx, domainID); err != nil {
		return err
	}

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		delegation, err := s.delegations.Find(ctx, domainID, caller)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "no delegation to remove")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load delegation")
		}
		if !delegation.Active {
			return dErrors.New(dErrors.CodeNotFound, "no delegation to remove")
		}

		delegation.Active = false
		if err := s.delegations.Upsert(ctx, delegation); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store delegation")
		}
		s.emit(ctx, audit.CategoryCompliance, audit.ActionDelegationRemoved, domainID, caller, delegation.Proxy, s.clock.Now())
		return nil
	})
}

// CanAccess is the explicit-grant predicate: true when the viewer is the
// owner, holds a live delegation from the owner, or is on the owner's
// allow-list. Default visibility flags are composed on top by the per-field
// gates below, not here.
func (s *Service) CanAccess(ctx context.Context, domainID domain.DomainID, owner, viewer domain.Principal) (bool, error) {
	if owner == viewer {
		return true, nil
	}

	live, err := s.isLiveProxy(ctx, domainID, owner, viewer)
	if err != nil {
		return false, err
	}
	if live {
		return true, nil
	}

	settings, err := s.settings.Find(ctx, domainID, owner)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load privacy settings")
	}
	return settings.Allows(viewer), nil
}

// CanViewScore gates the score read path: default-open.
func (s *Service) CanViewScore(ctx context.Context, domainID domain.DomainID, owner, viewer domain.Principal) (bool, error) {
	return s.canView(ctx, domainID, owner, viewer, func(settings *Settings) bool {
		return settings.ShowScore
	})
}

// CanViewEndorsements gates the endorsement read path: default-open.
func (s *Service) CanViewEndorsements(ctx context.Context, domainID domain.DomainID, owner, viewer domain.Principal) (bool, error) {
	return s.canView(ctx, domainID, owner, viewer, func(settings *Settings) bool {
		return settings.ShowEndorsements
	})
}

// CanViewActivities gates the activity read path: default-closed.
func (s *Service) CanViewActivities(ctx context.Context, domainID domain.DomainID, owner, viewer domain.Principal) (bool, error) {
	return s.canView(ctx, domainID, owner, viewer, func(settings *Settings) bool {
		return settings.ShowActivities
	})
}

// CanViewVerifications gates the verification read path: default-closed.
func (s *Service) CanViewVerifications(ctx context.Context, domainID domain.DomainID, owner, viewer domain.Principal) (bool, error) {
	return s.canView(ctx, domainID, owner, viewer, func(settings *Settings) bool {
		return settings.ShowVerifications
	})
}

func (s *Service) canView(ctx context.Context, domainID domain.DomainID, owner, viewer domain.Principal,
	flag func(*Settings) bool) (bool, error) {

	allowed, err := s.CanAccess(ctx, domainID, owner, viewer)
	if err != nil {
		return false, err
	}
	if allowed {
		return true, nil
	}

	settings, err := s.settings.Find(ctx, domainID, owner)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return flag(DefaultSettings(domainID, owner)), nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load privacy settings")
	}
	return flag(settings), nil
}

func (s *Service) isLiveProxy(ctx context.Context, domainID domain.DomainID, owner, candidate domain.Principal) (bool, error) {
	delegation, err := s.delegations.Find(ctx, domainID, owner)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load delegation")
	}
	return delegation.Proxy == candidate && delegation.IsLive(s.clock.Now()), nil
}

func (s *Service) requireDomain(ctx context.Context, domainID domain.DomainID) error {
	exists, err := s.domains.Exists(ctx, domainID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check domain")
	}
	if !exists {
		return dErrors.New(dErrors.CodeInvalidDomain, "domain does not exist")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, category audit.Category, action string,
	domainID domain.DomainID, actor, subject domain.Principal, tick domain.LogicalTime) {

	if s.logger != nil {
		s.logger.InfoContext(ctx, action,
			"log_type", "audit",
			"domain_id", domainID,
			"actor", actor,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if s.audit == nil {
		return
	}
	_ = s.audit.Emit(ctx, audit.Event{
		Category:  category,
		Action:    action,
		Domain:    domainID,
		Actor:     actor,
		Subject:   subject,
		RequestID: requestcontext.RequestID(ctx),
		Tick:      tick,
	})
}
