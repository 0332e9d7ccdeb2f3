package registry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"repute/pkg/clock"
	"repute/pkg/domain"
	dErrors "repute/pkg/domainerrors"
	"repute/pkg/tx"
)

type RegistrySuite struct {
	suite.Suite
	ctx     context.Context
	store   *InMemory
	clock   *clock.Manual
	service *Service
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
	s.clock = clock.NewManual(1)
	s.service = NewService(s.store, s.clock, tx.NewSerial(), nil, slog.Default(), nil)
}

func validRequest() CreateDomainRequest {
	return CreateDomainRequest{
		Name:               "engineering",
		Description:        "engineering guild",
		WeightEndorsement:  40,
		WeightActivity:     30,
		WeightVerification: 30,
		MinEndorsements:    5,
	}
}

func (s *RegistrySuite) TestCreateDomainAllocatesSequentialIDs() {
	first, err := s.service.CreateDomain(s.ctx, "admin", validRequest())
	s.Require().NoError(err)
	s.Equal(domain.DomainID(0), first)

	second, err := s.service.CreateDomain(s.ctx, "admin", validRequest())
	s.Require().NoError(err)
	s.Equal(domain.DomainID(1), second)
}

func (s *RegistrySuite) TestCreateDomainStoresCallerAsAdmin() {
	id, err := s.service.CreateDomain(s.ctx, "founder", validRequest())
	s.Require().NoError(err)

	d, err := s.service.GetDomain(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(domain.Principal("founder"), d.Admin)
	s.True(d.Active)
	s.Equal(domain.LogicalTime(1), d.CreatedAt)
}

func (s *RegistrySuite) TestCreateDomainValidation() {
	cases := []struct {
		name   string
		mutate func(*CreateDomainRequest)
	}{
		{"empty name", func(r *CreateDomainRequest) { r.Name = "  " }},
		{"empty description", func(r *CreateDomainRequest) { r.Description = "" }},
		{"weight sum over budget", func(r *CreateDomainRequest) { r.WeightEndorsement = 71 }},
		{"zero min endorsements", func(r *CreateDomainRequest) { r.MinEndorsements = 0 }},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			req := validRequest()
			tc.mutate(&req)
			_, err := s.service.CreateDomain(s.ctx, "admin", req)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func (s *RegistrySuite) TestCreateDomainAllowsPartialWeights() {
	req := validRequest()
	req.WeightEndorsement = 10
	req.WeightActivity = 0
	req.WeightVerification = 0
	_, err := s.service.CreateDomain(s.ctx, "admin", req)
	s.Require().NoError(err)
}

func (s *RegistrySuite) TestGetDomainUnknown() {
	_, err := s.service.GetDomain(s.ctx, 42)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidDomain))
}
