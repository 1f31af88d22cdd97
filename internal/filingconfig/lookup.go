package filingconfig

import (
	"context"
	"errors"
	"log/slog"

	"efile/internal/filing/models"
	dErrors "efile/pkg/domain-errors"
	"efile/pkg/platform/sentinel"
)

// Store reads and writes raw configuration values.
type Store interface {
	Get(ctx context.Context, key Key) (string, error)
	Put(ctx context.Context, entry Entry) error
}

// Lookup resolves typed configuration values.
type Lookup struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Lookup)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Lookup) {
		l.logger = logger
	}
}

// NewLookup constructs a Lookup over store.
func NewLookup(store Store, opts ...Option) *Lookup {
	l := &Lookup{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FeeSchedule returns the fee schedule for a form and year.
func (l *Lookup) FeeSchedule(ctx context.Context, t models.FilingType, year int) (FeeSchedule, error) {
	key := FeesKey(t, year)
	value, err := l.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return FeeSchedule{}, dErrors.New(dErrors.CodeConfigurationMissing, "no fee schedule configured for "+key.String())
		}
		return FeeSchedule{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load fee schedule")
	}
	fs, err := ParseFeeSchedule(value)
	if err != nil {
		l.logger.ErrorContext(ctx, "invalid fee schedule", "key", key.String(), "error", err)
		return FeeSchedule{}, err
	}
	return fs, nil
}

// Deadline returns the due date of a quarterly filing.
func (l *Lookup) Deadline(ctx context.Context, t models.FilingType, year int, q models.Quarter) (models.Date, error) {
	key := DeadlineKey(t, year, q)
	value, err := l.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Date{}, dErrors.Validation(dErrors.KindMissingDeadline, "could not determine deadline for "+key.String())
		}
		return models.Date{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load deadline")
	}
	d, err := models.ParseDate(value)
	if err != nil {
		l.logger.ErrorContext(ctx, "invalid deadline", "key", key.String(), "value", value)
		return models.Date{}, dErrors.Validation(dErrors.KindMissingDeadline, "malformed deadline for "+key.String())
	}
	return d, nil
}

// PutFeeSchedule stores a fee schedule after validating it.
func (l *Lookup) PutFeeSchedule(ctx context.Context, t models.FilingType, year int, fs FeeSchedule) error {
	if err := fs.normalize(); err != nil {
		return err
	}
	value, err := fs.Encode()
	if err != nil {
		return err
	}
	return l.store.Put(ctx, Entry{Key: FeesKey(t, year), Value: value})
}

// PutDeadline stores a quarterly due date.
func (l *Lookup) PutDeadline(ctx context.Context, t models.FilingType, year int, q models.Quarter, d models.Date) error {
	return l.store.Put(ctx, Entry{Key: DeadlineKey(t, year, q), Value: d.String()})
}
