package registry

import (
	"context"
	"errors"
	"log/slog"

	"repute/internal/audit"
	"repute/internal/platform/metrics"
	"repute/pkg/clock"
	"repute/pkg/domain"
	dErrors "repute/pkg/domainerrors"
	"repute/pkg/requestcontext"
	"repute/pkg/sentinel"
	"repute/pkg/tx"
)

// AuditPublisher captures mutation events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// CreateDomainRequest carries a new domain's configuration.
type CreateDomainRequest struct {
	Name               string
	Description        string
	WeightEndorsement  uint32
	WeightActivity     uint32
	WeightVerification uint32
	MinEndorsements    uint32
}

// Service orchestrates domain lifecycle. Domains are created once, never
// deleted, and their admin never changes.
type Service struct {
	domains Store
	clock   clock.Clock
	tx      tx.Runner
	audit   AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(domains Store, clk clock.Clock, runner tx.Runner,
	publisher AuditPublisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		domains: domains,
		clock:   clk,
		tx:      runner,
		audit:   publisher,
		logger:  logger,
		metrics: m,
	}
}

// CreateDomain validates the configuration, allocates the next sequential
// domain ID, and stores the domain with the caller as its admin.
func (s *Service) CreateDomain(ctx context.Context, caller domain.Principal,
	req CreateDomainRequest) (domain.DomainID, error) {

	var id domain.DomainID
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		d, err := NewDomain(req.Name, req.Description, caller, now,
			req.WeightEndorsement, req.WeightActivity, req.WeightVerification, req.MinEndorsements)
		if err != nil {
			return err
		}

		id, err = s.domains.Create(ctx, d)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create domain")
		}

		if s.logger != nil {
			s.logger.InfoContext(ctx, audit.ActionDomainCreated,
				"log_type", "audit",
				"domain_id", id,
				"actor", caller,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		if s.audit != nil {
			_ = s.audit.Emit(ctx, audit.Event{
				Category:  audit.CategoryCompliance,
				Action:    audit.ActionDomainCreated,
				Domain:    id,
				Actor:     caller,
				RequestID: requestcontext.RequestID(ctx),
				Tick:      now,
			})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.IncDomainsCreated()
	return id, nil
}

// GetDomain returns a domain's configuration. Domain configuration carries
// no per-user data, so it is not privacy-gated.
func (s *Service) GetDomain(ctx context.Context, id domain.DomainID) (*Domain, error) {
	d, err := s.domains.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInvalidDomain, "domain does not exist")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load domain")
	}
	return d, nil
}
