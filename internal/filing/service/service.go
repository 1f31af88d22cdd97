// Package service orchestrates the filing lifecycle: creation from a form
// template, editing, finalization with fee assessment, and the administrative
// lock and cancel transitions.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	entitymodels "efile/internal/entity/models"
	"efile/internal/filing/amendment"
	"efile/internal/filing/fees"
	"efile/internal/filing/metrics"
	"efile/internal/filing/models"
	"efile/internal/notify"
	id "efile/pkg/domain"
)

// Store persists filings and raw documents. Lookups return
// sentinel.ErrNotFound when absent; Save returns sentinel.ErrConflict when the
// filing's version is stale.
type Store interface {
	Create(ctx context.Context, f *models.Filing, raw []byte) error
	FindByID(ctx context.Context, filingID id.FilingID) (*models.Filing, error)
	FindForUpdate(ctx context.Context, filingID id.FilingID) (*models.Filing, error)
	Save(ctx context.Context, f *models.Filing) error
	LoadRaw(ctx context.Context, filingID id.FilingID) ([]byte, error)
	SaveRaw(ctx context.Context, filingID id.FilingID, raw []byte) error
	LatestFiled(ctx context.Context, entityID id.EntityID, t models.FilingType, year int) (*models.Filing, error)
	ListByEntity(ctx context.Context, entityID id.EntityID, statuses ...models.Status) ([]*models.Filing, error)
	HasAmendment(ctx context.Context, filingID id.FilingID) (bool, error)
}

// FilingStoreTx provides a transactional boundary for filing mutations.
// Entity writes made with the ctx passed to fn join the same transaction.
type FilingStoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}

// EntityStore reads lobbying entities, their filers and contact history.
type EntityStore interface {
	FindEntity(ctx context.Context, entityID id.EntityID) (*entitymodels.LobbyingEntity, error)
	CurrentContactInfo(ctx context.Context, entityID id.EntityID) (*entitymodels.ContactInfo, error)
	AppendContactInfo(ctx context.Context, ci *entitymodels.ContactInfo) error
	FindFiler(ctx context.Context, filerID id.FilerID) (*entitymodels.Filer, error)
	IsAssociated(ctx context.Context, filerID id.FilerID, entityID id.EntityID) (bool, error)
	FilersForEntity(ctx context.Context, entityID id.EntityID) ([]*entitymodels.Filer, error)
}

// DeadlineSource resolves quarterly deadlines.
type DeadlineSource interface {
	Deadline(ctx context.Context, t models.FilingType, year int, q models.Quarter) (models.Date, error)
}

// FeeCalculator computes the fee breakdown of a filing.
type FeeCalculator interface {
	Compute(ctx context.Context, in fees.Input) (*fees.Breakdown, error)
}

// DefaultLocation is the city's timezone; filing dates are calendar days there.
const DefaultLocation = "America/Los_Angeles"

// Service orchestrates filing operations.
type Service struct {
	filings   Store
	tx        FilingStoreTx
	entities  EntityStore
	deadlines DeadlineSource
	fees      FeeCalculator
	resolver  *amendment.Resolver
	notifier  notify.Dispatcher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    *slog.Logger
	location  *time.Location

	notifyTimeout time.Duration
	inflight      sync.WaitGroup
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithNotifier sets the dispatcher used after a filing is filed.
func WithNotifier(d notify.Dispatcher) Option {
	return func(s *Service) {
		s.notifier = d
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithLocation sets the timezone that decides the filing date.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithResolver(r *amendment.Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithNotifyTimeout bounds each background notification.
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// New constructs a Service.
func New(filings Store, tx FilingStoreTx, entities EntityStore, deadlines DeadlineSource, calc FeeCalculator, opts ...Option) *Service {
	s := &Service{
		filings:       filings,
		tx:            tx,
		entities:      entities,
		deadlines:     deadlines,
		fees:          calc,
		resolver:      amendment.NewResolver(),
		tracer:        otel.Tracer("efile/internal/filing/service"),
		logger:        slog.Default(),
		notifyTimeout: 10 * time.Second,
	}
	if loc, err := time.LoadLocation(DefaultLocation); err == nil {
		s.location = loc
	} else {
		s.location = time.UTC
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Wait blocks until background notifications have finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

func (s *Service) today(now time.Time) models.Date {
	return models.DateOf(now.In(s.location))
}
