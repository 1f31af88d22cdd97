package notify_test

//go:generate mockgen -source=notify.go -destination=mocks/mocks.go -package=mocks Dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/mock/gomock"

	"efile/internal/notify"
	"efile/internal/notify/mocks"
	id "efile/pkg/domain"
	"efile/pkg/platform/circuit"
	"efile/pkg/requestcontext"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var out kgo.ProduceResults
	for _, r := range rs {
		if p.err == nil {
			p.records = append(p.records, r)
		}
		out = append(out, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return out
}

type NotifySuite struct {
	suite.Suite
	ctx    context.Context
	logger *slog.Logger
	msg    notify.Message
}

func TestNotifySuite(t *testing.T) {
	suite.Run(t, new(NotifySuite))
}

func (s *NotifySuite) SetupTest() {
	s.ctx = requestcontext.WithTime(
		requestcontext.WithRequestID(context.Background(), "req-1"),
		time.Date(2021, 4, 2, 17, 0, 0, 0, time.UTC))
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.msg = notify.Message{
		Template:   notify.TemplateFilingReceived,
		Recipients: []string{"filer@example.com"},
		Data:       map[string]any{"filing_type": "ec601"},
		FilingID:   id.NewFilingID(),
	}
}

func (s *NotifySuite) TestKafkaDispatcher() {
	s.Run("publishes a keyed JSON record", func() {
		p := &fakeProducer{}
		d := notify.NewKafkaDispatcher(p, "efile.notifications")
		s.Require().NoError(d.Dispatch(s.ctx, s.msg))
		s.Require().Len(p.records, 1)

		rec := p.records[0]
		s.Equal("efile.notifications", rec.Topic)
		s.Equal(s.msg.FilingID.String(), string(rec.Key))
		s.Equal("template", rec.Headers[0].Key)

		var got notify.Message
		s.Require().NoError(json.Unmarshal(rec.Value, &got))
		s.Equal(notify.TemplateFilingReceived, got.Template)
		s.Equal("req-1", got.RequestID)
		s.Equal([]string{"filer@example.com"}, got.Recipients)
		s.True(got.SentAt.Equal(time.Date(2021, 4, 2, 17, 0, 0, 0, time.UTC)))
	})

	s.Run("produce errors are returned", func() {
		d := notify.NewKafkaDispatcher(&fakeProducer{err: errors.New("broker down")}, "t")
		s.Require().ErrorContains(d.Dispatch(s.ctx, s.msg), "broker down")
	})
}

func (s *NotifySuite) TestFailoverDispatcher() {
	s.Run("primary success skips fallback", func() {
		ctrl := gomock.NewController(s.T())
		primary, fallback := mocks.NewMockDispatcher(ctrl), mocks.NewMockDispatcher(ctrl)
		primary.EXPECT().Dispatch(gomock.Any(), s.msg).Return(nil)

		d := notify.NewFailoverDispatcher(primary, fallback, circuit.New("kafka"), s.logger)
		s.Require().NoError(d.Dispatch(s.ctx, s.msg))
	})

	s.Run("primary failure falls back and opens the breaker", func() {
		ctrl := gomock.NewController(s.T())
		primary, fallback := mocks.NewMockDispatcher(ctrl), mocks.NewMockDispatcher(ctrl)
		primary.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(errors.New("broker down")).Times(1)
		fallback.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		breaker := circuit.New("kafka", circuit.WithFailureThreshold(1), circuit.WithCooldown(time.Hour))
		d := notify.NewFailoverDispatcher(primary, fallback, breaker, s.logger)
		s.Require().NoError(d.Dispatch(s.ctx, s.msg))
		s.True(breaker.IsOpen())

		s.Require().NoError(d.Dispatch(s.ctx, s.msg), "open breaker goes straight to fallback")
	})
}

func (s *NotifySuite) TestLogDispatcher() {
	s.Require().NoError(notify.NewLogDispatcher(s.logger).Dispatch(s.ctx, s.msg))
}
