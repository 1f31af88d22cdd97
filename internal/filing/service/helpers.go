package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	entitymodels "efile/internal/entity/models"
	"efile/internal/filing/document"
	"efile/internal/filing/models"
	id "efile/pkg/domain"
	dErrors "efile/pkg/domain-errors"
	"efile/pkg/platform/sentinel"
	"efile/pkg/requestcontext"
)

// translate maps store errors to domain errors. Domain errors pass through.
func translate(err error, notFound, internal string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "filing was modified concurrently")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internal)
}

func (s *Service) authorize(ctx context.Context, filerID id.FilerID, entityID id.EntityID) error {
	ok, err := s.entities.IsAssociated(ctx, filerID, entityID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check filer association")
	}
	if !ok {
		s.logger.WarnContext(ctx, "filer not associated with entity",
			"filer_id", filerID, "entity_id", entityID)
		return dErrors.New(dErrors.CodeForbidden, "filer may not act for this lobbying entity")
	}
	return nil
}

func (s *Service) loadDocument(ctx context.Context, store Store, filingID id.FilingID) (document.Document, error) {
	raw, err := store.LoadRaw(ctx, filingID)
	if err != nil {
		return nil, translate(err, "filing document not found", "failed to load filing document")
	}
	return document.Decode(raw)
}

func (s *Service) currentContact(ctx context.Context, entityID id.EntityID) (document.ContactInfo, error) {
	ci, err := s.entities.CurrentContactInfo(ctx, entityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return document.ContactInfo{}, dErrors.New(dErrors.CodeValidation, "lobbying entity has no contact info")
		}
		return document.ContactInfo{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load entity contact info")
	}
	return document.ContactInfo{
		EffectiveDate: ci.EffectiveDate,
		Name:          ci.Name,
		Address1:      ci.Address1,
		Address2:      ci.Address2,
		City:          ci.City,
		Zipcode:       ci.Zipcode,
		State:         ci.State,
		Phone:         ci.Phone,
	}, nil
}

func (s *Service) filerContact(ctx context.Context, filerID id.FilerID) (document.FilerContact, error) {
	f, err := s.entities.FindFiler(ctx, filerID)
	if err != nil {
		return document.FilerContact{}, translate(err, "filer not found", "failed to load filer")
	}
	return document.FilerContact{
		FilerID:    f.ID,
		FirstName:  f.Contact.FirstName,
		MiddleName: f.Contact.MiddleName,
		LastName:   f.Contact.LastName,
		Address1:   f.Contact.Address1,
		Address2:   f.Contact.Address2,
		City:       f.Contact.City,
		State:      f.Contact.State,
		Zipcode:    f.Contact.Zipcode,
		Phone:      f.Contact.Phone,
		Email:      f.Email,
	}, nil
}

func contactRecord(c document.ContactInfo) entitymodels.ContactInfo {
	return entitymodels.ContactInfo{
		EffectiveDate: c.EffectiveDate,
		Name:          c.Name,
		Address1:      c.Address1,
		Address2:      c.Address2,
		City:          c.City,
		Zipcode:       c.Zipcode,
		State:         c.State,
		Phone:         c.Phone,
	}
}

// checkConsistency rejects a document that belongs to another filing or form.
func checkConsistency(f *models.Filing, doc document.Document) error {
	var fields []dErrors.FieldError
	if doc.Form() != f.Type {
		fields = append(fields, dErrors.FieldError{Field: "form", Message: "expected " + f.Type.String()})
	}
	if h := doc.Common(); h.FilingID != f.ID {
		fields = append(fields, dErrors.FieldError{Field: "filing_id", Message: "expected " + f.ID.String()})
	}
	if len(fields) > 0 {
		return dErrors.Validation(dErrors.KindSchema, "document does not belong to this filing", fields...)
	}
	return nil
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

// logFailure logs guard violations at warn and everything else at error.
func (s *Service) logFailure(ctx context.Context, op string, err error, attributes ...any) {
	args := append(attributes, "op", op, "error", err)
	if de, ok := dErrors.As(err); ok && de.Code == dErrors.CodeInternal && de.Err != nil {
		args = append(args, "cause", de.Err)
	}
	if isRejection(err) {
		s.logger.WarnContext(ctx, "filing operation rejected", args...)
		return
	}
	s.logger.ErrorContext(ctx, "filing operation failed", args...)
}

func isRejection(err error) bool {
	de, ok := dErrors.As(err)
	if !ok {
		return false
	}
	switch de.Code {
	case dErrors.CodeInternal, dErrors.CodeTimeout, dErrors.CodeConfigurationMissing, dErrors.CodeAmendmentChainBroken:
		return false
	}
	return true
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
