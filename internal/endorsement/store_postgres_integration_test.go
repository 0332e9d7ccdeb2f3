//go:build integration

package endorsement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"repute/internal/registry"
	"repute/pkg/domain"
	"repute/pkg/sentinel"
	"repute/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	ctx       context.Context
	container *containers.PostgresContainer
	store     *PostgresStore
	dom       domain.DomainID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.container = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.container.DB)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	_ = s.container.DB.Close()
	_ = s.container.Container.Terminate(s.ctx)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.container.TruncateTables(s.ctx, "domains"))

	d, err := registry.NewDomain("test-domain", "integration fixture", "admin", 1, 40, 30, 30, 5)
	s.Require().NoError(err)
	id, err := registry.NewPostgres(s.container.DB).Create(s.ctx, d)
	s.Require().NoError(err)
	s.dom = id
}

func (s *PostgresStoreSuite) endorsement(endorser, endorsee domain.Principal, weight uint32) *Endorsement {
	return &Endorsement{
		Domain:    s.dom,
		Endorser:  endorser,
		Endorsee:  endorsee,
		Weight:    weight,
		Message:   "solid work",
		Tags:      []string{"golang", "reviews"},
		CreatedAt: 10,
		Active:    true,
	}
}

func (s *PostgresStoreSuite) TestUpsertAndFindRoundtrip() {
	e := s.endorsement("alice", "bob", 7)
	s.Require().NoError(s.store.Upsert(s.ctx, e))

	found, err := s.store.Find(s.ctx, s.dom, "alice", "bob")
	s.Require().NoError(err)
	s.Equal(e.Weight, found.Weight)
	s.Equal(e.Message, found.Message)
	s.Equal(e.Tags, found.Tags)
	s.Equal(e.CreatedAt, found.CreatedAt)
	s.True(found.Active)
}

func (s *PostgresStoreSuite) TestFindMissing() {
	_, err := s.store.Find(s.ctx, s.dom, "alice", "bob")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpsertOverwritesOnConflict() {
	s.Require().NoError(s.store.Upsert(s.ctx, s.endorsement("alice", "bob", 3)))

	updated := s.endorsement("alice", "bob", 9)
	updated.Message = "even better"
	s.Require().NoError(s.store.Upsert(s.ctx, updated))

	found, err := s.store.Find(s.ctx, s.dom, "alice", "bob")
	s.Require().NoError(err)
	s.Equal(uint32(9), found.Weight)
	s.Equal("even better", found.Message)
}

func (s *PostgresStoreSuite) TestListActiveForEndorsee() {
	s.Require().NoError(s.store.Upsert(s.ctx, s.endorsement("alice", "bob", 5)))
	s.Require().NoError(s.store.Upsert(s.ctx, s.endorsement("carol", "bob", 6)))

	removed := s.endorsement("dave", "bob", 2)
	removed.Active = false
	s.Require().NoError(s.store.Upsert(s.ctx, removed))

	// An endorsement of someone else must not leak in.
	s.Require().NoError(s.store.Upsert(s.ctx, s.endorsement("alice", "carol", 4)))

	list, err := s.store.ListActiveForEndorsee(s.ctx, s.dom, "bob")
	s.Require().NoError(err)
	s.Len(list, 2)
	for _, e := range list {
		s.Equal(domain.Principal("bob"), e.Endorsee)
		s.True(e.Active)
	}
}
