package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	entitymodels "efile/internal/entity/models"
	entitystore "efile/internal/entity/store"
	"efile/internal/filing/document"
	"efile/internal/filing/fees"
	"efile/internal/filing/metrics"
	"efile/internal/filing/models"
	"efile/internal/filing/service"
	filingstore "efile/internal/filing/store"
	"efile/internal/filingconfig"
	"efile/internal/notify"
	"efile/internal/notify/mocks"
	id "efile/pkg/domain"
	dErrors "efile/pkg/domain-errors"
	efiletest "efile/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	notifier *mocks.MockDispatcher
	entities *entitystore.InMemory
	filings  *filingstore.InMemory
	config   *filingconfig.Lookup
	metrics  *metrics.Metrics
	svc      *service.Service

	entity id.EntityID
	filer  id.FilerID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	now := time.Date(2021, 3, 15, 18, 0, 0, 0, time.UTC)
	s.ctx = efiletest.RequestContext(now)
	s.ctrl = gomock.NewController(s.T())
	s.notifier = mocks.NewMockDispatcher(s.ctrl)
	s.entities = entitystore.NewInMemory()
	s.filings = filingstore.NewInMemory()
	s.config = filingconfig.NewLookup(filingconfig.NewInMemory())
	s.metrics = metrics.New(prometheus.NewRegistry())

	fs, err := filingconfig.ParseFeeSchedule(`{"fee_schedule":[
		{"start":"2021-01-01","end":"2021-06-30","lobbyist":"50","client":"25"},
		{"start":"2021-07-01","end":"2021-12-31","lobbyist":"30","client":"12.50"}]}`)
	s.Require().NoError(err)
	s.Require().NoError(s.config.PutFeeSchedule(s.ctx, models.FilingTypeEC601, 2021, fs))

	s.svc = service.New(
		s.filings,
		service.NewShardedTx(s.filings, time.Second),
		s.entities,
		s.config,
		fees.NewEngine(s.config),
		service.WithLogger(efiletest.DiscardLogger()),
		service.WithMetrics(s.metrics),
		service.WithNotifier(s.notifier),
		service.WithLocation(time.UTC),
	)

	s.entity = id.NewEntityID()
	s.Require().NoError(s.entities.CreateEntity(s.ctx, &entitymodels.LobbyingEntity{
		ID: s.entity, Name: "Harbor Advocacy", Created: now,
	}))
	ci, err := entitymodels.NewContactInfo(s.entity, entitymodels.ContactInfo{
		EffectiveDate: models.MustParseDate("2020-06-01"),
		Name:          "Harbor Advocacy",
		Address1:      "1 Pier Way",
		City:          "Oakland",
		Zipcode:       "94607",
		State:         "CA",
	}, now)
	s.Require().NoError(err)
	s.Require().NoError(s.entities.AppendContactInfo(s.ctx, ci))

	s.filer = s.newFiler("pat@example.com")
}

func (s *ServiceSuite) TearDownTest() {
	s.svc.Wait()
}

func (s *ServiceSuite) newFiler(email string) id.FilerID {
	filerID := id.NewFilerID()
	s.Require().NoError(s.entities.CreateFiler(s.ctx, &entitymodels.Filer{
		ID:      filerID,
		Email:   email,
		Contact: entitymodels.FilerContact{FirstName: "Pat", LastName: "Filer", City: "Oakland", State: "CA"},
	}))
	s.Require().NoError(s.entities.Associate(s.ctx, filerID, s.entity))
	return filerID
}

func (s *ServiceSuite) advance(d time.Duration) {
	s.ctx = efiletest.Advance(s.ctx, d)
}

func (s *ServiceSuite) allowNotifications() {
	s.notifier.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func (s *ServiceSuite) createRegistration(amends *id.FilingID) id.FilingID {
	filingID, err := s.svc.Create(s.ctx, service.CreateRequest{
		FilingType: models.FilingTypeEC601,
		EntityID:   s.entity,
		FilerID:    s.filer,
		Year:       2021,
		AmendsID:   amends,
	})
	s.Require().NoError(err)
	return filingID
}

func (s *ServiceSuite) editRegistration(filingID id.FilingID) *document.Ec601 {
	doc, err := s.svc.GetForEdit(s.ctx, filingID, s.filer)
	s.Require().NoError(err)
	ec601, ok := doc.(*document.Ec601)
	s.Require().True(ok)
	return ec601
}

func addLobbyist(d *document.Ec601, entityID, effective string) {
	if _, ok := d.Directory.Entity(entityID); !ok {
		d.Directory.Add(document.DirectoryEntity{ID: entityID, EffectiveDate: models.MustParseDate(effective)})
	}
	d.ScheduleA = append(d.ScheduleA, document.Row{document.LobbyistRefKey: entityID})
}

func sign(doc document.Document) {
	doc.Common().Verification.Signature = "Pat Filer"
}

// fileRegistration creates and files a registration listing lobbyists, all
// effective 2021-03-01.
func (s *ServiceSuite) fileRegistration(amends *id.FilingID, lobbyists ...string) (id.FilingID, *service.FinalizeResult) {
	filingID := s.createRegistration(amends)
	doc := s.editRegistration(filingID)
	doc.ScheduleA = nil
	for _, l := range lobbyists {
		addLobbyist(doc, l, "2021-03-01")
	}
	sign(doc)
	res, err := s.svc.Finalize(s.ctx, filingID, s.filer, doc)
	s.Require().NoError(err)
	return filingID, res
}

func (s *ServiceSuite) status(filingID id.FilingID) models.Status {
	f, err := s.filings.FindByID(s.ctx, filingID)
	s.Require().NoError(err)
	return f.Status
}

func (s *ServiceSuite) TestCreate() {
	s.Run("registration starts from the template", func() {
		filingID := s.createRegistration(nil)
		f, err := s.filings.FindByID(s.ctx, filingID)
		s.Require().NoError(err)
		s.Equal(models.StatusNew, f.Status)
		s.Equal(s.filer, f.CreatedBy)
		s.Equal("ec601_2021.1", f.FormName)

		doc := s.editRegistration(filingID)
		s.Equal(filingID, doc.FilingID)
		s.Equal(2021, doc.Year)
		s.Equal("Harbor Advocacy", doc.LobbyingEntityContactInfo.Name)
		s.Equal("Pat", doc.Filer.FirstName)
		s.Equal("pat@example.com", doc.Filer.Email)
		s.Equal("2021-01-31.1", doc.Meta.SchemaVersion)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.FilingsCreated.WithLabelValues("ec601", "false")))
	})

	s.Run("forms without a template are rejected", func() {
		_, err := s.svc.Create(s.ctx, service.CreateRequest{
			FilingType: models.FilingTypeEC602, EntityID: s.entity, FilerID: s.filer, Year: 2021,
		})
		s.Require().Error(err)
		s.True(dErrors.HasKind(err, dErrors.KindUnsupportedFilingType))
	})

	s.Run("unassociated filer is forbidden", func() {
		stranger := id.NewFilerID()
		s.Require().NoError(s.entities.CreateFiler(s.ctx, &entitymodels.Filer{ID: stranger}))
		_, err := s.svc.Create(s.ctx, service.CreateRequest{
			FilingType: models.FilingTypeEC601, EntityID: s.entity, FilerID: stranger, Year: 2021,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown entity", func() {
		_, err := s.svc.Create(s.ctx, service.CreateRequest{
			FilingType: models.FilingTypeEC601, EntityID: id.NewEntityID(), FilerID: s.filer, Year: 2021,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("year out of range", func() {
		_, err := s.svc.Create(s.ctx, service.CreateRequest{
			FilingType: models.FilingTypeEC601, EntityID: s.entity, FilerID: s.filer, Year: 2019,
		})
		s.Require().Error(err)
		s.True(dErrors.HasKind(err, dErrors.KindInvalidPeriod))
	})

	s.Run("quarterly report needs a configured deadline", func() {
		_, err := s.svc.Create(s.ctx, service.CreateRequest{
			FilingType: models.FilingTypeEC603, EntityID: s.entity, FilerID: s.filer, Year: 2021, Quarter: models.Q2,
		})
		s.Require().Error(err)
		s.True(dErrors.HasKind(err, dErrors.KindMissingDeadline))
	})
}

func (s *ServiceSuite) TestQuarterlyReportCopiesLatestRegistration() {
	s.allowNotifications()
	s.fileRegistration(nil, "lob-old")
	s.advance(time.Hour)
	s.fileRegistration(nil, "lob-1", "lob-2")
	s.Require().NoError(s.config.PutDeadline(s.ctx, models.FilingTypeEC603, 2021, models.Q1, models.MustParseDate("2021-04-30")))

	filingID, err := s.svc.Create(s.ctx, service.CreateRequest{
		FilingType: models.FilingTypeEC603, EntityID: s.entity, FilerID: s.filer, Year: 2021, Quarter: models.Q1,
	})
	s.Require().NoError(err)

	f, err := s.filings.FindByID(s.ctx, filingID)
	s.Require().NoError(err)
	s.Equal("2021-04-30", f.Deadline.String())
	s.Equal("2021-03-31", f.PeriodEnd.String())

	doc, err := s.svc.GetForEdit(s.ctx, filingID, s.filer)
	s.Require().NoError(err)
	q, ok := doc.(*document.Ec603)
	s.Require().True(ok)
	s.Equal(models.Q1, q.Quarter)
	s.Require().Len(q.Registered.Lobbyists, 2)
	s.Equal("lob-1", q.Registered.Lobbyists[0]["id"])
	s.Equal("lob-2", q.Registered.Lobbyists[1]["id"])
}

func (s *ServiceSuite) TestQuarterlyAmendmentRefreshesRegistered() {
	s.allowNotifications()
	s.fileRegistration(nil, "lob-1")
	s.Require().NoError(s.config.PutDeadline(s.ctx, models.FilingTypeEC603, 2021, models.Q1, models.MustParseDate("2021-04-30")))

	quarterly, err := s.svc.Create(s.ctx, service.CreateRequest{
		FilingType: models.FilingTypeEC603, EntityID: s.entity, FilerID: s.filer, Year: 2021, Quarter: models.Q1,
	})
	s.Require().NoError(err)
	doc, err := s.svc.GetForEdit(s.ctx, quarterly, s.filer)
	s.Require().NoError(err)
	s.Require().Len(doc.(*document.Ec603).Registered.Lobbyists, 1)
	sign(doc)
	res, err := s.svc.Finalize(s.ctx, quarterly, s.filer, doc)
	s.Require().NoError(err)
	s.Nil(res.Fees, "quarterly reports carry no fees")
	s.Equal(models.StatusFiled, s.status(quarterly))

	s.advance(time.Hour)
	s.fileRegistration(nil, "lob-1", "lob-2")

	amendment, err := s.svc.Create(s.ctx, service.CreateRequest{
		FilingType: models.FilingTypeEC603, EntityID: s.entity, FilerID: s.filer, AmendsID: &quarterly,
	})
	s.Require().NoError(err)

	f, err := s.filings.FindByID(s.ctx, amendment)
	s.Require().NoError(err)
	s.True(f.Amendment)
	s.Equal(1, f.AmendmentNumber)
	s.Equal(quarterly, *f.AmendsPrevID)
	s.Equal(models.Q1, f.Quarter)
	s.Equal(2021, f.Year)

	edit, err := s.svc.GetForEdit(s.ctx, amendment, s.filer)
	s.Require().NoError(err)
	q, ok := edit.(*document.Ec603)
	s.Require().True(ok)
	s.Empty(q.Verification.Signature)
	s.Require().Len(q.Registered.Lobbyists, 2)
	s.Equal("lob-1", q.Registered.Lobbyists[0]["id"])
	s.Equal("lob-2", q.Registered.Lobbyists[1]["id"])

	sign(q)
	_, err = s.svc.Finalize(s.ctx, amendment, s.filer, q)
	s.Require().NoError(err)
	s.Equal(models.StatusFiled, s.status(amendment))
}

func (s *ServiceSuite) TestUpdate() {
	s.allowNotifications()

	s.Run("replaces the document and marks progress", func() {
		filingID := s.createRegistration(nil)
		doc := s.editRegistration(filingID)
		addLobbyist(doc, "lob-1", "2021-02-01")
		s.Require().NoError(s.svc.Update(s.ctx, filingID, s.filer, doc))
		s.Equal(models.StatusInProgress, s.status(filingID))

		again := s.editRegistration(filingID)
		s.Require().Len(again.ScheduleA, 1)
		s.Equal("lob-1", again.ScheduleA[0].Ref(document.LobbyistRefKey))
	})

	s.Run("filed document is immutable", func() {
		filingID, _ := s.fileRegistration(nil, "lob-1")
		before, err := s.filings.LoadRaw(s.ctx, filingID)
		s.Require().NoError(err)

		doc, err := document.Decode(before)
		s.Require().NoError(err)
		doc.(*document.Ec601).ScheduleA = nil
		err = s.svc.Update(s.ctx, filingID, s.filer, doc)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotEditable))
		s.True(dErrors.HasKind(err, dErrors.KindNotEditable))

		after, err := s.filings.LoadRaw(s.ctx, filingID)
		s.Require().NoError(err)
		s.JSONEq(string(before), string(after))
		s.Equal(models.StatusFiled, s.status(filingID))
	})

	s.Run("document of another filing", func() {
		a := s.createRegistration(nil)
		b := s.createRegistration(nil)
		err := s.svc.Update(s.ctx, a, s.filer, s.editRegistration(b))
		s.Require().Error(err)
		s.True(dErrors.HasKind(err, dErrors.KindSchema))
		s.Equal("filing_id", dErrors.FieldsOf(err)[0].Field)
	})
}

func (s *ServiceSuite) TestFinalize() {
	var sent notify.Message
	s.notifier.EXPECT().Dispatch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, msg notify.Message) error {
			sent = msg
			return nil
		})

	filingID, res := s.fileRegistration(nil, "lob-1")
	s.svc.Wait()

	s.Equal(models.StatusFiled, res.Filing.Status)
	s.Equal("2021-03-15", res.Filing.FilingDate.String())
	s.Equal(s.filer, res.Filing.FilerID)
	s.Require().NotNil(res.Fees)
	s.Equal(1, res.Fees.Lobbyists)
	s.True(res.Fees.LobbyistFees.Equal(decimal.NewFromInt(50)))
	s.Equal(0, res.Fees.Clients)
	s.True(res.Fees.ClientFees.IsZero())

	raw, err := s.filings.LoadRaw(s.ctx, filingID)
	s.Require().NoError(err)
	stored, err := document.Decode(raw)
	s.Require().NoError(err)
	s.Require().NotNil(stored.Common().Fees)
	s.Equal(1, stored.Common().Fees.Lobbyists)

	s.Equal(notify.TemplateFilingReceived, sent.Template)
	s.Equal([]string{"pat@example.com"}, sent.Recipients)
	s.Equal(filingID, sent.FilingID)
	s.Equal("50.00", sent.Data["fee_total"])
	s.Equal(1.0, testutil.ToFloat64(s.metrics.FinalizeOutcomes.WithLabelValues("ec601", metrics.OutcomeFiled)))
}

func (s *ServiceSuite) TestFinalizeRejections() {
	s.Run("structural errors name the field", func() {
		filingID := s.createRegistration(nil)
		doc := s.editRegistration(filingID)
		addLobbyist(doc, "lob-1", "2021-03-01")
		_, err := s.svc.Finalize(s.ctx, filingID, s.filer, doc)
		s.Require().Error(err)
		s.True(dErrors.HasKind(err, dErrors.KindSchema))
		s.Contains(fieldNames(err), "verification.signature")
		s.Equal(models.StatusNew, s.status(filingID))
	})

	s.Run("fee outside every range leaves the filing untouched", func() {
		filingID := s.createRegistration(nil)
		doc := s.editRegistration(filingID)
		addLobbyist(doc, "lob-late", "2022-02-01")
		sign(doc)
		_, err := s.svc.Finalize(s.ctx, filingID, s.filer, doc)
		s.Require().Error(err)
		s.True(dErrors.HasKind(err, dErrors.KindNoMatchingFeeSchedule))
		s.Equal(models.StatusNew, s.status(filingID))
		s.Empty(s.editRegistration(filingID).ScheduleA)
	})

	s.Run("canceled filing", func() {
		filingID := s.createRegistration(nil)
		_, err := s.svc.Cancel(s.ctx, filingID)
		s.Require().NoError(err)
		doc, err := s.filings.LoadRaw(s.ctx, filingID)
		s.Require().NoError(err)
		d, err := document.Decode(doc)
		s.Require().NoError(err)
		_, err = s.svc.Finalize(s.ctx, filingID, s.filer, d)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotEditable))
	})
}

func fieldNames(err error) []string {
	var out []string
	for _, fe := range dErrors.FieldsOf(err) {
		out = append(out, fe.Field)
	}
	return out
}

func (s *ServiceSuite) TestFinalizeRecordsContactChange() {
	s.allowNotifications()
	filingID := s.createRegistration(nil)
	doc := s.editRegistration(filingID)
	doc.LobbyingEntityContactInfoChange = true
	doc.LobbyingEntityContactInfo.Address1 = "200 Broadway"
	doc.LobbyingEntityContactInfo.EffectiveDate = models.MustParseDate("2021-03-01")
	sign(doc)
	_, err := s.svc.Finalize(s.ctx, filingID, s.filer, doc)
	s.Require().NoError(err)

	history, err := s.entities.ContactHistory(s.ctx, s.entity)
	s.Require().NoError(err)
	s.Len(history, 2)
	current, err := s.entities.CurrentContactInfo(s.ctx, s.entity)
	s.Require().NoError(err)
	s.Equal("200 Broadway", current.Address1)
}

func (s *ServiceSuite) TestAmendments() {
	s.allowNotifications()

	s.Run("only a filed filing can be amended", func() {
		draft := s.createRegistration(nil)
		s.Require().NoError(s.svc.Update(s.ctx, draft, s.filer, s.editRegistration(draft)))
		_, err := s.svc.Create(s.ctx, service.CreateRequest{
			FilingType: models.FilingTypeEC601, EntityID: s.entity, FilerID: s.filer, AmendsID: &draft,
		})
		s.Require().Error(err)
		s.True(dErrors.HasKind(err, dErrors.KindAmendmentTargetInvalid))
	})

	s.Run("chain numbering and billing of new entries", func() {
		root, _ := s.fileRegistration(nil, "lob-a", "lob-b")

		first := s.createRegistration(&root)
		doc := s.editRegistration(first)
		s.True(doc.Amendment)
		s.Equal(root, *doc.AmendsID)
		s.Empty(doc.Verification.Signature)
		s.Nil(doc.Fees)
		s.Len(doc.ScheduleA, 2)

		addLobbyist(doc, "lob-c", "2021-03-01")
		sign(doc)
		res, err := s.svc.Finalize(s.ctx, first, s.filer, doc)
		s.Require().NoError(err)
		s.Equal(1, res.Fees.Lobbyists, "only the lobbyist absent from the predecessor is billed")
		s.True(res.Fees.LobbyistFees.Equal(decimal.NewFromInt(50)))

		second := s.createRegistration(&first)
		chain, err := s.svc.Chain(s.ctx, second)
		s.Require().NoError(err)
		s.Require().Len(chain, 3)
		s.Equal(root, chain[0].ID)
		s.False(chain[0].Amendment)
		for i, f := range chain[1:] {
			s.Equal(i+1, f.AmendmentNumber)
			s.Equal(root, *f.AmendsOrigID)
		}
		s.Equal(first, *chain[2].AmendsPrevID)
	})

	s.Run("a filing takes a single amendment", func() {
		root, _ := s.fileRegistration(nil, "lob-a")
		first := s.createRegistration(&root)

		_, err := s.svc.Create(s.ctx, service.CreateRequest{
			FilingType: models.FilingTypeEC601, EntityID: s.entity, FilerID: s.filer, AmendsID: &root,
		})
		s.Require().Error(err)
		s.True(dErrors.HasKind(err, dErrors.KindAmendmentTargetInvalid))

		_, err = s.svc.Cancel(s.ctx, first)
		s.Require().NoError(err)
		replacement := s.createRegistration(&root)
		f, err := s.filings.FindByID(s.ctx, replacement)
		s.Require().NoError(err)
		s.Equal(1, f.AmendmentNumber)
		s.Equal(root, *f.AmendsPrevID)
	})
}

func (s *ServiceSuite) TestComputeFeesIsIdempotent() {
	filingID := s.createRegistration(nil)
	doc := s.editRegistration(filingID)
	addLobbyist(doc, "lob-1", "2021-02-01")
	addLobbyist(doc, "lob-2", "2021-08-01")
	s.Require().NoError(s.svc.Update(s.ctx, filingID, s.filer, doc))

	first, err := s.svc.ComputeFees(s.ctx, filingID, s.filer)
	s.Require().NoError(err)
	second, err := s.svc.ComputeFees(s.ctx, filingID, s.filer)
	s.Require().NoError(err)
	s.True(first.Total().Equal(decimal.NewFromInt(80)))
	s.True(first.Total().Equal(second.Total()))
	s.Equal(first.Lobbyists.Details[0].EffectiveDateIn, second.Lobbyists.Details[0].EffectiveDateIn)
	s.Equal(models.StatusInProgress, s.status(filingID))
}

func (s *ServiceSuite) TestLockAndCancel() {
	s.allowNotifications()

	s.Run("locked filing can be finalized but not edited", func() {
		filingID := s.createRegistration(nil)
		doc := s.editRegistration(filingID)
		_, err := s.svc.Lock(s.ctx, filingID)
		s.Require().NoError(err)

		_, err = s.svc.GetForEdit(s.ctx, filingID, s.filer)
		s.Require().Error(err)
		s.True(dErrors.HasKind(err, dErrors.KindLocked))
		err = s.svc.Update(s.ctx, filingID, s.filer, doc)
		s.True(dErrors.HasKind(err, dErrors.KindLocked))

		sign(doc)
		res, err := s.svc.Finalize(s.ctx, filingID, s.filer, doc)
		s.Require().NoError(err)
		s.Equal(models.StatusFiled, res.Filing.Status)
	})

	s.Run("terminal filings cannot be canceled", func() {
		filingID, _ := s.fileRegistration(nil)
		_, err := s.svc.Cancel(s.ctx, filingID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotEditable))
	})

	s.Run("list by status", func() {
		filed, err := s.svc.List(s.ctx, s.entity, models.StatusFiled)
		s.Require().NoError(err)
		s.Len(filed, 2)
	})
}

func (s *ServiceSuite) TestNotificationFailureDoesNotFailFinalize() {
	s.notifier.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
	filingID, res := s.fileRegistration(nil)
	s.svc.Wait()
	s.Equal(filingID, res.Filing.ID)
	s.Equal(models.StatusFiled, s.status(filingID))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.NotificationFailures))
}

func (s *ServiceSuite) TestConcurrentFinalizeFilesOnce() {
	s.allowNotifications()
	filingID := s.createRegistration(nil)
	docs := []*document.Ec601{s.editRegistration(filingID), s.editRegistration(filingID)}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, doc := range docs {
		sign(doc)
		wg.Add(1)
		go func(doc *document.Ec601) {
			defer wg.Done()
			_, err := s.svc.Finalize(s.ctx, filingID, s.filer, doc)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}(doc)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case dErrors.HasCode(err, dErrors.CodeNotEditable), dErrors.HasCode(err, dErrors.CodeConflict):
			rejected++
		}
	}
	s.Equal(1, ok)
	s.Equal(1, rejected)
}
