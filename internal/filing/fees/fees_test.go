package fees_test

//go:generate mockgen -source=fees.go -destination=mocks/mocks.go -package=mocks ScheduleSource

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"efile/internal/filing/document"
	"efile/internal/filing/fees"
	"efile/internal/filing/fees/mocks"
	"efile/internal/filing/models"
	"efile/internal/filingconfig"
	id "efile/pkg/domain"
	dErrors "efile/pkg/domain-errors"
)

type EngineSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	schedules *mocks.MockScheduleSource
	engine    *fees.Engine
	ctx       context.Context
	schedule  filingconfig.FeeSchedule
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.schedules = mocks.NewMockScheduleSource(s.ctrl)
	s.engine = fees.NewEngine(s.schedules)
	s.ctx = context.Background()

	fs, err := filingconfig.ParseFeeSchedule(`{"fee_schedule":[
		{"start":"2021-01-01","end":"2021-06-30","lobbyist":"50","client":"25"},
		{"start":"2021-07-01","end":"2021-12-31","lobbyist":"30","client":"12.50"}]}`)
	s.Require().NoError(err)
	s.schedule = fs
}

func (s *EngineSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *EngineSuite) expectSchedule() {
	s.schedules.EXPECT().FeeSchedule(gomock.Any(), models.FilingTypeEC601, 2021).Return(s.schedule, nil).AnyTimes()
}

func (s *EngineSuite) filing(t models.FilingType, link *models.AmendmentLink) *models.Filing {
	f, err := models.NewFiling(models.NewFilingParams{
		ID: id.NewFilingID(), Type: t, EntityID: id.NewEntityID(), Year: 2021, Amendment: link,
	}, time.Now())
	s.Require().NoError(err)
	return f
}

type member struct {
	id        string
	effective string
}

func (s *EngineSuite) firmDocument(f *models.Filing, lobbyists, clients []member) *document.Ec601 {
	doc, err := document.New(document.NewParams{Filing: f})
	s.Require().NoError(err)
	d := doc.(*document.Ec601)
	for _, m := range lobbyists {
		d.Directory.Add(document.DirectoryEntity{ID: m.id, EffectiveDate: models.MustParseDate(m.effective)})
		d.ScheduleA = append(d.ScheduleA, document.Row{document.LobbyistRefKey: m.id})
	}
	for _, m := range clients {
		d.Directory.Add(document.DirectoryEntity{ID: m.id, EffectiveDate: models.MustParseDate(m.effective)})
		d.ScheduleB = append(d.ScheduleB, document.Row{document.ClientRefKey: m.id})
	}
	return d
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (s *EngineSuite) TestBucketing() {
	s.expectSchedule()

	s.Run("effective date selects the containing range", func() {
		f := s.filing(models.FilingTypeEC601, nil)
		doc := s.firmDocument(f, []member{{"lob-1", "2021-08-01"}}, nil)

		b, err := s.engine.Compute(s.ctx, fees.Input{Filing: f, Document: doc})
		s.Require().NoError(err)
		s.Require().Len(b.Lobbyists.Details, 1)
		s.Equal("07/01/2021 - 12/31/2021", b.Lobbyists.Details[0].EffectiveDateIn)
		s.True(b.Lobbyists.Fees.Equal(dec("30")))
		s.Empty(b.Clients.Details)
		s.True(b.Clients.Fees.IsZero())
	})

	s.Run("groups by range and totals exactly", func() {
		f := s.filing(models.FilingTypeEC601, nil)
		doc := s.firmDocument(f,
			[]member{{"lob-1", "2021-10-05"}, {"lob-2", "2021-08-05"}, {"lob-3", "2021-01-01"}},
			[]member{{"cli-1", "2021-01-01"}, {"cli-2", "2021-10-05"}, {"cli-3", "2021-10-06"}},
		)

		b, err := s.engine.Compute(s.ctx, fees.Input{Filing: f, Document: doc})
		s.Require().NoError(err)

		s.Require().Len(b.Lobbyists.Details, 2)
		s.Equal("01/01/2021 - 06/30/2021", b.Lobbyists.Details[0].EffectiveDateIn)
		s.Equal(1, b.Lobbyists.Details[0].Count)
		s.Equal(2, b.Lobbyists.Details[1].Count)
		s.True(b.Lobbyists.Fees.Equal(dec("110")))

		s.True(b.Clients.Fees.Equal(dec("50")), "25 + 2 x 12.50, got %s", b.Clients.Fees)
		s.True(b.Total().Equal(dec("160")))

		summary, err := b.Summary()
		s.Require().NoError(err)
		s.Equal(3, summary.Lobbyists)
		s.Equal(3, summary.Clients)
		s.True(summary.ClientFees.Equal(dec("50")))
	})

	s.Run("date outside every range is rejected", func() {
		f := s.filing(models.FilingTypeEC601, nil)
		doc := s.firmDocument(f, []member{{"lob-1", "2022-01-01"}}, nil)

		_, err := s.engine.Compute(s.ctx, fees.Input{Filing: f, Document: doc})
		s.True(dErrors.HasKind(err, dErrors.KindNoMatchingFeeSchedule))
	})

	s.Run("entity missing from the directory is rejected", func() {
		f := s.filing(models.FilingTypeEC601, nil)
		doc := s.firmDocument(f, nil, nil)
		doc.ScheduleA = append(doc.ScheduleA, document.Row{document.LobbyistRefKey: "ghost"})

		_, err := s.engine.Compute(s.ctx, fees.Input{Filing: f, Document: doc})
		s.True(dErrors.HasKind(err, dErrors.KindNoMatchingFeeSchedule))
		s.Contains(err.Error(), "ghost")
	})

	s.Run("computation is idempotent", func() {
		f := s.filing(models.FilingTypeEC601, nil)
		doc := s.firmDocument(f, []member{{"lob-1", "2021-02-01"}}, []member{{"cli-1", "2021-09-01"}})

		first, err := s.engine.Compute(s.ctx, fees.Input{Filing: f, Document: doc})
		s.Require().NoError(err)
		second, err := s.engine.Compute(s.ctx, fees.Input{Filing: f, Document: doc})
		s.Require().NoError(err)

		a, err := json.Marshal(first)
		s.Require().NoError(err)
		b, err := json.Marshal(second)
		s.Require().NoError(err)
		s.JSONEq(string(a), string(b))
	})
}

func (s *EngineSuite) TestAmendmentBillsOnlyNewEntries() {
	s.expectSchedule()

	root := s.filing(models.FilingTypeEC601, nil)
	prev := s.firmDocument(root, []member{{"A", "2021-02-01"}, {"B", "2021-03-01"}}, nil)

	amend := s.filing(models.FilingTypeEC601, &models.AmendmentLink{PrevID: root.ID, OrigID: root.ID, Number: 1})
	cur := s.firmDocument(amend, []member{{"A", "2021-02-01"}, {"B", "2021-03-01"}, {"C", "2021-09-01"}}, nil)

	b, err := s.engine.Compute(s.ctx, fees.Input{Filing: amend, Document: cur, Previous: prev})
	s.Require().NoError(err)
	s.Equal(1, b.Lobbyists.Count())
	s.Equal("07/01/2021 - 12/31/2021", b.Lobbyists.Details[0].EffectiveDateIn)
	s.True(b.Lobbyists.Fees.Equal(dec("30")))

	s.Run("missing predecessor document breaks the chain", func() {
		_, err := s.engine.Compute(s.ctx, fees.Input{Filing: amend, Document: cur})
		s.True(dErrors.HasCode(err, dErrors.CodeAmendmentChainBroken))
	})
}

func (s *EngineSuite) TestOtherForms() {
	s.Run("ec602 amendment is free", func() {
		root := s.filing(models.FilingTypeEC602, nil)
		amend := s.filing(models.FilingTypeEC602, &models.AmendmentLink{PrevID: root.ID, OrigID: root.ID, Number: 1})
		b, err := s.engine.Compute(s.ctx, fees.Input{Filing: amend})
		s.Require().NoError(err)
		s.Require().NotNil(b.Fee)
		s.True(b.Fee.IsZero())
		_, err = b.Summary()
		s.True(dErrors.HasCode(err, dErrors.CodeNotImplemented))
	})

	s.Run("ec602 registration is not implemented", func() {
		_, err := s.engine.Compute(s.ctx, fees.Input{Filing: s.filing(models.FilingTypeEC602, nil)})
		s.True(dErrors.HasCode(err, dErrors.CodeNotImplemented))
	})

	s.Run("quarterly forms are not assessed", func() {
		f := &models.Filing{ID: id.NewFilingID(), Type: models.FilingTypeEC603, Year: 2021}
		_, err := s.engine.Compute(s.ctx, fees.Input{Filing: f})
		s.True(dErrors.HasKind(err, dErrors.KindUnsupportedFilingType))
	})

	s.Run("missing schedule propagates", func() {
		s.schedules.EXPECT().FeeSchedule(gomock.Any(), models.FilingTypeEC601, 2021).
			Return(filingconfig.FeeSchedule{}, dErrors.New(dErrors.CodeConfigurationMissing, "none"))
		f := s.filing(models.FilingTypeEC601, nil)
		_, err := s.engine.Compute(s.ctx, fees.Input{Filing: f, Document: s.firmDocument(f, nil, nil)})
		s.True(dErrors.HasCode(err, dErrors.CodeConfigurationMissing))
	})
}
