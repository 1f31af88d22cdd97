package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"efile/internal/filing/models"
	id "efile/pkg/domain"
	"efile/pkg/requestcontext"
)

// Lock freezes a filing for review. A locked filing can still be finalized
// or canceled.
func (s *Service) Lock(ctx context.Context, filingID id.FilingID) (*models.Filing, error) {
	return s.transition(ctx, "lock", "filing_locked", filingID, (*models.Filing).CanLock, (*models.Filing).ApplyLock)
}

// Cancel withdraws a filing that has not reached a terminal status.
func (s *Service) Cancel(ctx context.Context, filingID id.FilingID) (*models.Filing, error) {
	return s.transition(ctx, "cancel", "filing_canceled", filingID, (*models.Filing).CanCancel, (*models.Filing).ApplyCancel)
}

func (s *Service) transition(
	ctx context.Context,
	op, event string,
	filingID id.FilingID,
	can func(*models.Filing) error,
	apply func(*models.Filing, time.Time),
) (_ *models.Filing, err error) {
	ctx, span := s.startSpan(ctx, "filing."+op, attribute.String("filing.id", filingID.String()))
	defer func() { endSpan(span, err) }()

	var f *models.Filing
	err = s.tx.RunInTx(WithLockKey(ctx, filingID.String()), func(ctx context.Context, store Store) error {
		var err error
		f, err = store.FindForUpdate(ctx, filingID)
		if err != nil {
			return translate(err, "filing not found", "failed to load filing")
		}
		if err := can(f); err != nil {
			return err
		}
		apply(f, requestcontext.Now(ctx))
		if err := store.Save(ctx, f); err != nil {
			return translate(err, "filing not found", "failed to save filing")
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, op, err, "filing_id", filingID)
		return nil, err
	}
	s.logAudit(ctx, event,
		"filing_id", f.ID,
		"entity_id", f.EntityID,
		"actor_id", requestcontext.FilerID(ctx),
	)
	return f, nil
}

// Chain returns the amendment chain ending at filingID, root first.
func (s *Service) Chain(ctx context.Context, filingID id.FilingID) (_ []*models.Filing, err error) {
	ctx, span := s.startSpan(ctx, "filing.Chain", attribute.String("filing.id", filingID.String()))
	defer func() { endSpan(span, err) }()
	return s.resolver.Chain(ctx, s.filings, filingID)
}

// List returns an entity's filings, newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, entityID id.EntityID, statuses ...models.Status) ([]*models.Filing, error) {
	filings, err := s.filings.ListByEntity(ctx, entityID, statuses...)
	if err != nil {
		return nil, translate(err, "lobbying entity not found", "failed to list filings")
	}
	return filings, nil
}
