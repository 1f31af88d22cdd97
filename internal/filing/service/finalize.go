package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	entitymodels "efile/internal/entity/models"
	"efile/internal/filing/document"
	"efile/internal/filing/fees"
	"efile/internal/filing/metrics"
	"efile/internal/filing/models"
	id "efile/pkg/domain"
	dErrors "efile/pkg/domain-errors"
	"efile/pkg/requestcontext"
)

// FinalizeResult is a filed filing and the fees embedded in its document.
type FinalizeResult struct {
	Filing    *models.Filing
	Fees      *document.FeeSummary
	Breakdown *fees.Breakdown
}

// Finalize validates and files the document. Fees are computed before the
// first write so a fee error leaves the filing untouched. A contact-info
// change flagged by the document is recorded as a new effective-dated record.
func (s *Service) Finalize(ctx context.Context, filingID id.FilingID, filerID id.FilerID, doc document.Document) (_ *FinalizeResult, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "filing.Finalize", attribute.String("filing.id", filingID.String()))
	defer func() { endSpan(span, err) }()

	res, err := s.finalize(ctx, filingID, filerID, doc)
	if s.metrics != nil {
		s.metrics.ObserveFinalize(start)
		s.metrics.IncrementFinalize(formLabel(doc), finalizeOutcome(err))
	}
	if err != nil {
		s.logFailure(ctx, "finalize", err, "filing_id", filingID, "filer_id", filerID)
		return nil, err
	}

	total := "0"
	if res.Fees != nil {
		total = res.Fees.Total().StringFixed(2)
		if s.metrics != nil {
			s.metrics.AddFees(res.Filing.Type.String(), res.Fees.Total().InexactFloat64())
		}
	}
	s.logAudit(ctx, "filing_finalized",
		"filing_id", res.Filing.ID,
		"filing_type", res.Filing.Type,
		"entity_id", res.Filing.EntityID,
		"filer_id", filerID,
		"filing_date", res.Filing.FilingDate,
		"fee_total", total,
	)
	s.notifyFiled(ctx, res.Filing, res.Fees)
	return res, nil
}

func (s *Service) finalize(ctx context.Context, filingID id.FilingID, filerID id.FilerID, doc document.Document) (*FinalizeResult, error) {
	if doc == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "document is required")
	}
	res := &FinalizeResult{}
	err := s.tx.RunInTx(WithLockKey(ctx, filingID.String()), func(ctx context.Context, store Store) error {
		f, err := store.FindForUpdate(ctx, filingID)
		if err != nil {
			return translate(err, "filing not found", "failed to load filing")
		}
		if err := s.authorize(ctx, filerID, f.EntityID); err != nil {
			return err
		}
		if err := f.CanFinalize(); err != nil {
			return err
		}
		if err := checkConsistency(f, doc); err != nil {
			return err
		}
		if err := doc.Validate(); err != nil {
			return err
		}

		if f.Type.AssessesFees() {
			in := fees.Input{Filing: f, Document: doc}
			if f.Amendment {
				prev, err := s.resolver.Predecessor(ctx, store, f)
				if err != nil {
					return err
				}
				if in.Previous, err = s.loadDocument(ctx, store, prev.ID); err != nil {
					return err
				}
			}
			breakdown, err := s.fees.Compute(ctx, in)
			if err != nil {
				return err
			}
			res.Breakdown = breakdown
			if breakdown.Lobbyists != nil {
				summary, err := breakdown.Summary()
				if err != nil {
					return err
				}
				doc.Common().Fees = &summary
				res.Fees = &summary
			}
		}

		raw, err := document.Encode(doc)
		if err != nil {
			return err
		}
		if err := store.SaveRaw(ctx, f.ID, raw); err != nil {
			return translate(err, "filing not found", "failed to save filing document")
		}

		now := requestcontext.Now(ctx)
		if doc.ContactInfoChanged() {
			ci, err := entitymodels.NewContactInfo(f.EntityID, contactRecord(doc.Common().LobbyingEntityContactInfo), now)
			if err != nil {
				return dErrors.New(dErrors.CodeValidation, err.Error())
			}
			if err := s.entities.AppendContactInfo(ctx, ci); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record contact info change")
			}
		}

		f.ApplyFinalize(filerID, s.today(now), now)
		if err := store.Save(ctx, f); err != nil {
			return translate(err, "filing not found", "failed to save filing")
		}
		res.Filing = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func finalizeOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeFiled
	case dErrors.HasCode(err, dErrors.CodeConflict):
		return metrics.OutcomeConflict
	case isRejection(err):
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeError
}

func formLabel(doc document.Document) string {
	if doc == nil {
		return "unknown"
	}
	return doc.Form().String()
}
