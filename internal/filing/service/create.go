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

// CreateRequest starts a filing. Amendments set AmendsID and inherit the
// predecessor's year and quarter; Year and Quarter, when given, must match.
type CreateRequest struct {
	FilingType models.FilingType
	EntityID   id.EntityID
	FilerID    id.FilerID
	Year       int
	Quarter    models.Quarter
	AmendsID   *id.FilingID
}

// Create builds a filing from its form template and stores it with its
// document in one unit of work.
func (s *Service) Create(ctx context.Context, req CreateRequest) (_ id.FilingID, err error) {
	ctx, span := s.startSpan(ctx, "filing.Create",
		attribute.String("filing.type", req.FilingType.String()),
		attribute.String("entity.id", req.EntityID.String()))
	defer func() { endSpan(span, err) }()

	f, err := s.create(ctx, req)
	if err != nil {
		s.logFailure(ctx, "create", err, "entity_id", req.EntityID, "filing_type", req.FilingType)
		return id.FilingID{}, err
	}
	if s.metrics != nil {
		s.metrics.IncrementFilingCreated(f.Type.String(), f.Amendment)
	}
	s.logAudit(ctx, "filing_created",
		"filing_id", f.ID,
		"filing_type", f.Type,
		"entity_id", f.EntityID,
		"filer_id", req.FilerID,
		"amendment", f.Amendment,
	)
	return f.ID, nil
}

func (s *Service) create(ctx context.Context, req CreateRequest) (*models.Filing, error) {
	if !req.FilingType.IsValid() {
		return nil, dErrors.Validation(dErrors.KindUnsupportedFilingType,
			"unrecognized filing type "+req.FilingType.String())
	}
	h, err := handlerFor(req.FilingType)
	if err != nil {
		return nil, err
	}
	if _, err := s.entities.FindEntity(ctx, req.EntityID); err != nil {
		return nil, translate(err, "lobbying entity not found", "failed to load lobbying entity")
	}
	if err := s.authorize(ctx, req.FilerID, req.EntityID); err != nil {
		return nil, err
	}
	contact, err := s.currentContact(ctx, req.EntityID)
	if err != nil {
		return nil, err
	}
	filer, err := s.filerContact(ctx, req.FilerID)
	if err != nil {
		return nil, err
	}

	if req.AmendsID == nil {
		if err := models.ValidatePeriod(req.FilingType, req.Year, req.Quarter, requestcontext.Now(ctx)); err != nil {
			return nil, err
		}
	}

	// The predecessor is resolved under the entity lock so two amendments of
	// the same filing cannot both pass the successor check.
	var f *models.Filing
	err = s.tx.RunInTx(WithLockKey(ctx, req.EntityID.String()), func(ctx context.Context, store Store) error {
		built, doc, err := s.build(ctx, store, req, h, contact, filer)
		if err != nil {
			return err
		}
		raw, err := document.Encode(doc)
		if err != nil {
			return err
		}
		if err := store.Create(ctx, built, raw); err != nil {
			return err
		}
		f = built
		return nil
	})
	if err != nil {
		return nil, translate(err, "filing not found", "failed to create filing")
	}
	return f, nil
}

func (s *Service) build(
	ctx context.Context,
	store Store,
	req CreateRequest,
	h formHandler,
	contact document.ContactInfo,
	filer document.FilerContact,
) (*models.Filing, document.Document, error) {
	now := requestcontext.Now(ctx)
	params := models.NewFilingParams{
		ID:        id.NewFilingID(),
		Type:      req.FilingType,
		EntityID:  req.EntityID,
		CreatedBy: req.FilerID,
		Year:      req.Year,
		Quarter:   req.Quarter,
	}
	var prev *models.Filing
	if req.AmendsID != nil {
		link, p, err := s.amendable(ctx, store, req)
		if err != nil {
			return nil, nil, err
		}
		prev = p
		params.Year, params.Quarter, params.Amendment = p.Year, p.Quarter, &link
	}
	if req.FilingType.IsQuarterly() {
		var err error
		params.Deadline, err = s.deadlines.Deadline(ctx, req.FilingType, params.Year, params.Quarter)
		if err != nil {
			return nil, nil, translate(err, "deadline not configured", "failed to load deadline")
		}
	}

	f, err := models.NewFiling(params, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, nil, err
	}

	var doc document.Document
	if prev != nil {
		prevDoc, err := s.loadDocument(ctx, store, prev.ID)
		if err != nil {
			return nil, nil, err
		}
		doc, err = document.NewAmendment(prevDoc, f, contact)
		if err != nil {
			return nil, nil, err
		}
	} else {
		doc, err = document.New(document.NewParams{Filing: f, Contact: contact})
		if err != nil {
			return nil, nil, err
		}
	}
	document.ApplyFiler(doc, filer)
	if h.populate != nil {
		if err := h.populate(ctx, s, store, f, doc); err != nil {
			return nil, nil, err
		}
	}
	return f, doc, nil
}

// amendable resolves the amendment link for req.AmendsID, then locks the
// predecessor and checks that it stays within the same entity, form and
// period and has no live successor.
func (s *Service) amendable(ctx context.Context, store Store, req CreateRequest) (models.AmendmentLink, *models.Filing, error) {
	link, _, err := s.resolver.Link(ctx, store, *req.AmendsID)
	if err != nil {
		return models.AmendmentLink{}, nil, err
	}
	prev, err := store.FindForUpdate(ctx, *req.AmendsID)
	if err != nil {
		return models.AmendmentLink{}, nil, translate(err, "amended filing not found", "failed to lock amended filing")
	}
	if err := matchPredecessor(req, prev); err != nil {
		return models.AmendmentLink{}, nil, err
	}
	amended, err := store.HasAmendment(ctx, prev.ID)
	if err != nil {
		return models.AmendmentLink{}, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing amendments")
	}
	if amended {
		return models.AmendmentLink{}, nil, dErrors.Validation(dErrors.KindAmendmentTargetInvalid,
			"filing has already been amended; amend its latest amendment instead")
	}
	return link, prev, nil
}

// matchPredecessor checks that an amendment stays within its predecessor's
// entity, form and period.
func matchPredecessor(req CreateRequest, prev *models.Filing) error {
	switch {
	case prev.EntityID != req.EntityID:
		return dErrors.Validation(dErrors.KindAmendmentTargetInvalid, "amended filing belongs to another lobbying entity")
	case prev.Type != req.FilingType:
		return dErrors.Validation(dErrors.KindAmendmentTargetInvalid,
			"amended filing is a "+prev.Type.String()+", not a "+req.FilingType.String())
	case req.Year != 0 && req.Year != prev.Year:
		return dErrors.Validation(dErrors.KindAmendmentTargetInvalid, "amendment must cover the amended filing's year")
	case req.Quarter != models.QuarterNone && req.Quarter != prev.Quarter:
		return dErrors.Validation(dErrors.KindAmendmentTargetInvalid, "amendment must cover the amended filing's quarter")
	}
	return nil
}
