package models

import (
	"time"

	id "efile/pkg/domain"
	dErrors "efile/pkg/domain-errors"
)

// Filing is the aggregate root for one submission of a lobbyist form.
//
// Invariants:
//   - Type is one of the recognized forms
//   - Quarterly forms carry a quarter and a deadline; annual forms carry neither
//   - Amendment implies AmendsPrevID, AmendsOrigID and AmendmentNumber >= 1
//   - Status only moves forward (see statusTransitions)
//   - Once locked, filed, filed fee pending or canceled the document is immutable
type Filing struct {
	ID              id.FilingID  `json:"filing_id"`
	EntityID        id.EntityID  `json:"entity_id"`
	CreatedBy       id.FilerID   `json:"created_by"`
	FilerID         id.FilerID   `json:"filer_id"`
	Type            FilingType   `json:"filing_type"`
	FormName        string       `json:"form_name"`
	Status          Status       `json:"status"`
	Year            int          `json:"year"`
	Quarter         Quarter      `json:"quarter,omitempty"`
	PeriodStart     Date         `json:"period_start"`
	PeriodEnd       Date         `json:"period_end"`
	Deadline        Date         `json:"deadline"`
	FilingDate      Date         `json:"filing_date"`
	Amendment       bool         `json:"amendment"`
	AmendsPrevID    *id.FilingID `json:"amends_prev_id,omitempty"`
	AmendsOrigID    *id.FilingID `json:"amends_orig_id,omitempty"`
	AmendmentNumber int          `json:"amendment_number,omitempty"`
	Version         int          `json:"version"`
	Created         time.Time    `json:"created"`
	Updated         time.Time    `json:"updated"`
}

// AmendmentLink positions an amendment within its chain.
type AmendmentLink struct {
	PrevID id.FilingID
	OrigID id.FilingID
	Number int
}

// NewFilingParams carries the inputs of NewFiling.
type NewFilingParams struct {
	ID        id.FilingID
	Type      FilingType
	EntityID  id.EntityID
	CreatedBy id.FilerID
	Year      int
	Quarter   Quarter
	Deadline  Date
	Amendment *AmendmentLink
}

// NewFiling builds a filing in status new.
func NewFiling(p NewFilingParams, now time.Time) (*Filing, error) {
	if !p.Type.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unrecognized filing type")
	}
	if p.ID.IsNil() || p.EntityID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "filing and entity ids are required")
	}
	period, err := PeriodFor(p.Year, p.Quarter)
	if err != nil {
		return nil, err
	}
	if p.Type.IsQuarterly() && p.Deadline.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "quarterly filing requires a deadline")
	}
	f := &Filing{
		ID:          p.ID,
		EntityID:    p.EntityID,
		CreatedBy:   p.CreatedBy,
		Type:        p.Type,
		FormName:    p.Type.FormName(),
		Status:      StatusNew,
		Year:        p.Year,
		Quarter:     p.Quarter,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		Deadline:    p.Deadline,
		Created:     now,
		Updated:     now,
	}
	if p.Amendment != nil {
		if err := f.applyAmendment(*p.Amendment); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Filing) applyAmendment(link AmendmentLink) error {
	if link.PrevID.IsNil() || link.OrigID.IsNil() || link.Number < 1 {
		return dErrors.New(dErrors.CodeInvariantViolation, "amendment requires predecessor, original and number")
	}
	prev, orig := link.PrevID, link.OrigID
	f.Amendment = true
	f.AmendsPrevID = &prev
	f.AmendsOrigID = &orig
	f.AmendmentNumber = link.Number
	return nil
}

// Period returns the filing's reporting window.
func (f *Filing) Period() Period {
	return Period{Start: f.PeriodStart, End: f.PeriodEnd}
}

// CanAmend checks that the filing may be the predecessor of a new amendment.
func (f *Filing) CanAmend() error {
	if !f.Status.IsFiled() {
		return dErrors.Validation(dErrors.KindAmendmentTargetInvalid,
			"only a filed filing can be amended, current status is "+f.Status.String())
	}
	return nil
}

// CanEdit checks that the document may be read for editing or replaced.
func (f *Filing) CanEdit() error {
	if f.Status.IsEditable() {
		return nil
	}
	if f.Status == StatusLocked {
		return dErrors.NewKind(dErrors.CodeNotEditable, dErrors.KindLocked, "filing is locked")
	}
	return dErrors.NewKind(dErrors.CodeNotEditable, dErrors.KindNotEditable,
		"filing is not editable in status "+f.Status.String())
}

// ApplyUpdate records a content save.
// Call CanEdit first to validate the transition.
func (f *Filing) ApplyUpdate(now time.Time) {
	f.Status = StatusInProgress
	f.Updated = now
}

// CanFinalize checks that the filing may be submitted.
func (f *Filing) CanFinalize() error {
	if !f.Status.CanTransitionTo(StatusFiled) {
		return dErrors.NewKind(dErrors.CodeNotEditable, dErrors.KindNotEditable,
			"filing cannot be finalized in status "+f.Status.String())
	}
	return nil
}

// ApplyFinalize marks the filing filed by filer on filingDate.
// Call CanFinalize first to validate the transition.
func (f *Filing) ApplyFinalize(filer id.FilerID, filingDate Date, now time.Time) {
	f.Status = StatusFiled
	f.FilerID = filer
	f.FilingDate = filingDate
	f.Updated = now
}

// CanLock checks that the filing may be frozen for review.
func (f *Filing) CanLock() error {
	if !f.Status.CanTransitionTo(StatusLocked) {
		return dErrors.NewKind(dErrors.CodeNotEditable, dErrors.KindNotEditable,
			"filing cannot be locked in status "+f.Status.String())
	}
	return nil
}

// ApplyLock freezes the document.
func (f *Filing) ApplyLock(now time.Time) {
	f.Status = StatusLocked
	f.Updated = now
}

// CanCancel checks that the filing has not reached a terminal status.
func (f *Filing) CanCancel() error {
	if !f.Status.CanTransitionTo(StatusCanceled) {
		return dErrors.NewKind(dErrors.CodeNotEditable, dErrors.KindNotEditable,
			"filing cannot be canceled in status "+f.Status.String())
	}
	return nil
}

// ApplyCancel withdraws the filing.
func (f *Filing) ApplyCancel(now time.Time) {
	f.Status = StatusCanceled
	f.Updated = now
}
