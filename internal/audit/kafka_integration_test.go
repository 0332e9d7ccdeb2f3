//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"repute/pkg/testutil/containers"
)

const testTopic = "repute.audit.events"

type KafkaSinkSuite struct {
	suite.Suite
	ctx       context.Context
	container *containers.RedpandaContainer
	sink      *KafkaSink
	consumer  *kgo.Client
}

func TestKafkaSinkSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaSinkSuite))
}

func (s *KafkaSinkSuite) SetupSuite() {
	s.ctx = context.Background()
	s.container = containers.NewRedpandaContainer(s.T())

	sink, err := NewKafkaSink(s.ctx, s.container.Brokers, testTopic)
	s.Require().NoError(err)
	s.sink = sink
	s.consumer = s.container.Consumer(s.T(), testTopic)
}

func (s *KafkaSinkSuite) TearDownSuite() {
	s.consumer.Close()
	s.sink.Close()
	_ = s.container.Container.Terminate(s.ctx)
}

func (s *KafkaSinkSuite) poll(want int) []*kgo.Record {
	deadline := time.Now().Add(15 * time.Second)
	var records []*kgo.Record
	for len(records) < want && time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(s.ctx, time.Second)
		fetches := s.consumer.PollFetches(ctx)
		cancel()
		s.Require().Empty(fetches.Errors())
		records = append(records, fetches.Records()...)
	}
	s.Require().Len(records, want)
	return records
}

func (s *KafkaSinkSuite) TestAppendDeliversEvent() {
	p := NewPublisher(s.sink)
	err := p.Emit(s.ctx, Event{
		Category: CategoryCompliance,
		Action:   ActionDomainCreated,
		Domain:   1,
		Actor:    "admin",
		Tick:     1,
	})
	s.Require().NoError(err)

	records := s.poll(1)
	s.Equal("1", string(records[0].Key))

	var event Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &event))
	s.Equal(ActionDomainCreated, event.Action)
	s.Equal(CategoryCompliance, event.Category)
	s.NotZero(event.ID)
	s.False(event.Timestamp.IsZero())
}

func (s *KafkaSinkSuite) TestEventsForOneDomainShareAKey() {
	p := NewPublisher(s.sink)
	for _, action := range []string{ActionUserEndorsed, ActionEndorsementRemoved, ActionActivityRecorded} {
		s.Require().NoError(p.Emit(s.ctx, Event{
			Category: CategoryOperations,
			Action:   action,
			Domain:   7,
			Actor:    "alice",
		}))
	}

	records := s.poll(3)
	for _, r := range records {
		s.Equal("7", string(r.Key))
	}
}
