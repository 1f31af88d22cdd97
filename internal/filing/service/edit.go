package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"efile/internal/filing/document"
	"efile/internal/filing/models"
	id "efile/pkg/domain"
	dErrors "efile/pkg/domain-errors"
	"efile/pkg/requestcontext"
)

// GetForEdit returns the filing's document for an associated filer, with the
// filer section overlaid from the filer's current contact info. Quarterly
// documents also get fresh entity contact info and registered roster. Nothing
// is persisted.
func (s *Service) GetForEdit(ctx context.Context, filingID id.FilingID, filerID id.FilerID) (_ document.Document, err error) {
	ctx, span := s.startSpan(ctx, "filing.GetForEdit", attribute.String("filing.id", filingID.String()))
	defer func() { endSpan(span, err) }()

	doc, err := s.getForEdit(ctx, filingID, filerID)
	if err != nil {
		s.logFailure(ctx, "get_for_edit", err, "filing_id", filingID, "filer_id", filerID)
		return nil, err
	}
	return doc, nil
}

func (s *Service) getForEdit(ctx context.Context, filingID id.FilingID, filerID id.FilerID) (document.Document, error) {
	f, err := s.filings.FindByID(ctx, filingID)
	if err != nil {
		return nil, translate(err, "filing not found", "failed to load filing")
	}
	if err := s.authorize(ctx, filerID, f.EntityID); err != nil {
		return nil, err
	}
	if err := f.CanEdit(); err != nil {
		return nil, err
	}
	doc, err := s.loadDocument(ctx, s.filings, f.ID)
	if err != nil {
		return nil, err
	}
	filer, err := s.filerContact(ctx, filerID)
	if err != nil {
		return nil, err
	}
	document.ApplyFiler(doc, filer)

	if h, ok := formHandlers[f.Type]; ok && h.refreshOnEdit {
		contact, err := s.currentContact(ctx, f.EntityID)
		if err != nil {
			return nil, err
		}
		doc.Common().LobbyingEntityContactInfo = contact
		if h.populate != nil {
			if err := h.populate(ctx, s, s.filings, f, doc); err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}

// Update replaces the filing's document wholesale and moves the filing to in
// progress. Concurrent saves are last-writer-wins.
func (s *Service) Update(ctx context.Context, filingID id.FilingID, filerID id.FilerID, doc document.Document) (err error) {
	ctx, span := s.startSpan(ctx, "filing.Update", attribute.String("filing.id", filingID.String()))
	defer func() { endSpan(span, err) }()

	if doc == nil {
		return dErrors.New(dErrors.CodeValidation, "document is required")
	}
	var f *models.Filing
	err = s.tx.RunInTx(WithLockKey(ctx, filingID.String()), func(ctx context.Context, store Store) error {
		var err error
		f, err = store.FindForUpdate(ctx, filingID)
		if err != nil {
			return translate(err, "filing not found", "failed to load filing")
		}
		if err := s.authorize(ctx, filerID, f.EntityID); err != nil {
			return err
		}
		if err := f.CanEdit(); err != nil {
			return err
		}
		if err := checkConsistency(f, doc); err != nil {
			return err
		}
		raw, err := document.Encode(doc)
		if err != nil {
			return err
		}
		if err := store.SaveRaw(ctx, f.ID, raw); err != nil {
			return translate(err, "filing not found", "failed to save filing document")
		}
		f.ApplyUpdate(requestcontext.Now(ctx))
		if err := store.Save(ctx, f); err != nil {
			return translate(err, "filing not found", "failed to save filing")
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "update", err, "filing_id", filingID, "filer_id", filerID)
		return err
	}
	s.logAudit(ctx, "filing_updated", "filing_id", f.ID, "filer_id", filerID)
	return nil
}
