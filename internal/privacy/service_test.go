package privacy

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

type stubDomains struct {
	known map[domain.DomainID]bool
}

func (s *stubDomains) Exists(_ context.Context, id domain.DomainID) (bool, error) {
	return s.known[id], nil
}

type PrivacySuite struct {
	suite.Suite
	ctx     context.Context
	dom     domain.DomainID
	clock   *clock.Manual
	service *Service
}

func TestPrivacySuite(t *testing.T) {
	suite.Run(t, new(PrivacySuite))
}

func (s *PrivacySuite) SetupTest() {
	s.ctx = context.Background()
	s.dom = 1
	s.clock = clock.NewManual(1)
	domains := &stubDomains{known: map[domain.DomainID]bool{s.dom: true}}
	s.service = NewService(NewInMemorySettings(), NewInMemoryDelegations(), domains,
		s.clock, tx.NewSerial(), nil, slog.Default())
}

func (s *PrivacySuite) TestDefaultVisibility() {
	// Without a settings record, score and endorsements are open to any
	// caller while activities and verifications are closed.
	ok, err := s.service.CanViewScore(s.ctx, s.dom, "alice", "bob")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.service.CanViewEndorsements(s.ctx, s.dom, "alice", "bob")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.service.CanViewActivities(s.ctx, s.dom, "alice", "bob")
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.service.CanViewVerifications(s.ctx, s.dom, "alice", "bob")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *PrivacySuite) TestUpdateSettingsOverwrites() {
	err := s.service.UpdateSettings(s.ctx, "alice", s.dom, "alice", SettingsUpdate{
		ShowScore:         false,
		ShowVerifications: true,
	})
	s.Require().NoError(err)

	ok, err := s.service.CanViewScore(s.ctx, s.dom, "alice", "bob")
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.service.CanViewVerifications(s.ctx, s.dom, "alice", "bob")
	s.Require().NoError(err)
	s.True(ok)

	// The update is a full overwrite, so omitted flags reset rather than
	// merge with the previous record.
	err = s.service.UpdateSettings(s.ctx, "alice", s.dom, "alice", SettingsUpdate{ShowScore: true})
	s.Require().NoError(err)

	ok, err = s.service.CanViewVerifications(s.ctx, s.dom, "alice", "bob")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *PrivacySuite) TestAllowListOverridesClosedFlags() {
	err := s.service.UpdateSettings(s.ctx, "alice", s.dom, "alice", SettingsUpdate{
		AuthorizedViewers: []domain.Principal{"carol"},
	})
	s.Require().NoError(err)

	ok, err := s.service.CanViewActivities(s.ctx, s.dom, "alice", "carol")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.service.CanViewActivities(s.ctx, s.dom, "alice", "bob")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *PrivacySuite) TestOwnerAlwaysSeesOwnData() {
	err := s.service.UpdateSettings(s.ctx, "alice", s.dom, "alice", SettingsUpdate{})
	s.Require().NoError(err)

	ok, err := s.service.CanViewScore(s.ctx, s.dom, "alice", "alice")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *PrivacySuite) TestUpdateSettingsOwnerOrProxyOnly() {
	err := s.service.UpdateSettings(s.ctx, "bob", s.dom, "alice", SettingsUpdate{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	s.Require().NoError(s.service.Delegate(s.ctx, "alice", s.dom, "bob", nil))
	err = s.service.UpdateSettings(s.ctx, "bob", s.dom, "alice", SettingsUpdate{ShowScore: true})
	s.Require().NoError(err)
}

func (s *PrivacySuite) TestViewerCap() {
	viewers := make([]domain.Principal, 11)
	for i := range viewers {
		viewers[i] = "viewer"
	}
	err := s.service.UpdateSettings(s.ctx, "alice", s.dom, "alice", SettingsUpdate{AuthorizedViewers: viewers})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *PrivacySuite) TestDelegateSelfRejected() {
	err := s.service.Delegate(s.ctx, "alice", s.dom, "alice", nil)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSelfReference))
}

func (s *PrivacySuite) TestProxyGainsAccess() {
	ok, err := s.service.CanAccess(s.ctx, s.dom, "alice", "bob")
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.service.Delegate(s.ctx, "alice", s.dom, "bob", nil))

	ok, err = s.service.CanAccess(s.ctx, s.dom, "alice", "bob")
	s.Require().NoError(err)
	s.True(ok)

	// A proxy can read even default-closed fields.
	ok, err = s.service.CanViewActivities(s.ctx, s.dom, "alice", "bob")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *PrivacySuite) TestExpiredDelegationGrantsNothing() {
	expiry := domain.LogicalTime(100)
	s.Require().NoError(s.service.Delegate(s.ctx, "alice", s.dom, "bob", &expiry))

	s.clock.Set(99)
	ok, err := s.service.CanAccess(s.ctx, s.dom, "alice", "bob")
	s.Require().NoError(err)
	s.True(ok)

	s.clock.Set(100)
	ok, err = s.service.CanAccess(s.ctx, s.dom, "alice", "bob")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *PrivacySuite) TestDelegateOverwrites() {
	s.Require().NoError(s.service.Delegate(s.ctx, "alice", s.dom, "bob", nil))
	s.Require().NoError(s.service.Delegate(s.ctx, "alice", s.dom, "carol", nil))

	ok, err := s.service.CanAccess(s.ctx, s.dom, "alice", "bob")
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.service.CanAccess(s.ctx, s.dom, "alice", "carol")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *PrivacySuite) TestRemoveDelegation() {
	err := s.service.RemoveDelegation(s.ctx, "alice", s.dom)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.Require().NoError(s.service.Delegate(s.ctx, "alice", s.dom, "bob", nil))
	s.Require().NoError(s.service.RemoveDelegation(s.ctx, "alice", s.dom))

	ok, err := s.service.CanAccess(s.ctx, s.dom, "alice", "bob")
	s.Require().NoError(err)
	s.False(ok)

	err = s.service.RemoveDelegation(s.ctx, "alice", s.dom)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *PrivacySuite) TestGetSettingsOwnerOrProxy() {
	settings, err := s.service.GetSettings(s.ctx, "alice", s.dom, "alice")
	s.Require().NoError(err)
	s.True(settings.ShowScore)
	s.True(settings.ShowEndorsements)
	s.False(settings.ShowActivities)
	s.False(settings.ShowVerifications)

	_, err = s.service.GetSettings(s.ctx, "bob", s.dom, "alice")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	s.Require().NoError(s.service.Delegate(s.ctx, "alice", s.dom, "bob", nil))
	_, err = s.service.GetSettings(s.ctx, "bob", s.dom, "alice")
	s.Require().NoError(err)
}

func (s *PrivacySuite) TestUnknownDomain() {
	err := s.service.UpdateSettings(s.ctx, "alice", 99, "alice", SettingsUpdate{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidDomain))
}
