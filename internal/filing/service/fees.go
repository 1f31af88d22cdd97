package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"efile/internal/filing/document"
	"efile/internal/filing/fees"
	id "efile/pkg/domain"
)

// ComputeFees returns the fee breakdown of the filing's stored document.
// It writes nothing, so repeated calls over an unchanged filing agree.
func (s *Service) ComputeFees(ctx context.Context, filingID id.FilingID, filerID id.FilerID) (_ *fees.Breakdown, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "filing.ComputeFees", attribute.String("filing.id", filingID.String()))
	defer func() { endSpan(span, err) }()
	if s.metrics != nil {
		defer s.metrics.ObserveComputeFees(start)
	}

	f, err := s.filings.FindByID(ctx, filingID)
	if err != nil {
		err = translate(err, "filing not found", "failed to load filing")
		s.logFailure(ctx, "compute_fees", err, "filing_id", filingID)
		return nil, err
	}
	if err := s.authorize(ctx, filerID, f.EntityID); err != nil {
		return nil, err
	}

	in := fees.Input{Filing: f}
	if document.Supported(f.Type) {
		if in.Document, err = s.loadDocument(ctx, s.filings, f.ID); err != nil {
			return nil, err
		}
		if f.Amendment {
			prev, err := s.resolver.Predecessor(ctx, s.filings, f)
			if err != nil {
				return nil, err
			}
			if in.Previous, err = s.loadDocument(ctx, s.filings, prev.ID); err != nil {
				return nil, err
			}
		}
	}
	breakdown, err := s.fees.Compute(ctx, in)
	if err != nil {
		s.logFailure(ctx, "compute_fees", err, "filing_id", filingID)
		return nil, err
	}
	return breakdown, nil
}
