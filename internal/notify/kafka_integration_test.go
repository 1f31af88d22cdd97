//go:build integration

package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	id "efile/pkg/domain"
	"efile/pkg/testutil/containers"
)

type KafkaIntegrationSuite struct {
	suite.Suite
	rp *containers.RedpandaContainer
}

func TestKafkaIntegrationSuite(t *testing.T) {
	suite.Run(t, new(KafkaIntegrationSuite))
}

func (s *KafkaIntegrationSuite) SetupSuite() {
	s.rp = containers.GetManager().Redpanda(s.T())
}

func (s *KafkaIntegrationSuite) TestDispatchPublishesKeyedRecord() {
	const topic = "efile.notifications.test"
	s.rp.CreateTopic(s.T(), topic)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	filingID := id.NewFilingID()
	dispatcher := NewKafkaDispatcher(s.rp.Client(s.T()), topic)
	s.Require().NoError(dispatcher.Dispatch(ctx, Message{
		Template:   TemplateFilingReceived,
		Recipients: []string{"filer@example.com"},
		Data:       map[string]any{"filing_type": "ec601"},
		FilingID:   filingID,
	}))

	consumer := s.rp.Client(s.T(),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().Len(records, 1)

	rec := records[0]
	s.Equal(filingID.String(), string(rec.Key))
	s.Require().Len(rec.Headers, 1)
	s.Equal(TemplateFilingReceived, string(rec.Headers[0].Value))

	var got Message
	s.Require().NoError(json.Unmarshal(rec.Value, &got))
	s.Equal([]string{"filer@example.com"}, got.Recipients)
	s.Equal("ec601", got.Data["filing_type"])
	s.False(got.SentAt.IsZero())
}
