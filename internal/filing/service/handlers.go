package service

import (
	"context"
	"errors"

	"efile/internal/filing/document"
	"efile/internal/filing/models"
	dErrors "efile/pkg/domain-errors"
	"efile/pkg/platform/sentinel"
)

// formHandler binds a creatable filing type to the steps that differ per form.
// Validation lives on the typed document and fees in the fee engine.
type formHandler struct {
	// populate fills derived sections of a new or amended document.
	populate func(ctx context.Context, s *Service, store Store, f *models.Filing, doc document.Document) error
	// refreshOnEdit re-runs populate and reloads entity contact info whenever
	// the document is opened for editing.
	refreshOnEdit bool
}

var formHandlers = map[models.FilingType]formHandler{
	models.FilingTypeEC601: {},
	models.FilingTypeEC603: {populate: populateRegistered, refreshOnEdit: true},
}

func handlerFor(t models.FilingType) (formHandler, error) {
	h, ok := formHandlers[t]
	if !ok {
		return formHandler{}, dErrors.Validation(dErrors.KindUnsupportedFilingType,
			"filing type "+t.String()+" is not implemented")
	}
	return h, nil
}

// populateRegistered copies the roster of the entity's latest filed
// registration for the same year into a quarterly report.
func populateRegistered(ctx context.Context, s *Service, store Store, f *models.Filing, doc document.Document) error {
	q, ok := doc.(*document.Ec603)
	if !ok {
		return dErrors.New(dErrors.CodeInternal, "quarterly filing does not hold a quarterly document")
	}
	regType, ok := f.Type.RegistrationType()
	if !ok {
		return nil
	}
	reg, err := store.LatestFiled(ctx, f.EntityID, regType, f.Year)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "no filed registration for quarterly report",
				"filing_id", f.ID, "entity_id", f.EntityID, "registration_type", regType, "year", f.Year)
			q.Registered = document.Registered{
				Lobbyists: []document.Row{}, Clients: []document.Row{}, MuniDecisions: []document.Row{},
			}
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load latest registration")
	}
	regDoc, err := s.loadDocument(ctx, store, reg.ID)
	if err != nil {
		return err
	}
	ec601, ok := regDoc.(*document.Ec601)
	if !ok {
		return dErrors.New(dErrors.CodeInternal, "registration "+reg.ID.String()+" does not hold an ec601 document")
	}
	q.Registered = document.RegisteredFrom(ec601)
	return nil
}
