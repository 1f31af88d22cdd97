package models

import (
	"time"

	"github.com/google/uuid"

	filingmodels "efile/internal/filing/models"
	id "efile/pkg/domain"
	dErrors "efile/pkg/domain-errors"
)

// LobbyingEntity is a firm, organization or individual that files lobbyist forms.
type LobbyingEntity struct {
	ID      id.EntityID
	Name    string
	Created time.Time
}

// ContactInfo is one effective-dated address record of a lobbying entity.
// Records are append-only; the current record is the one with the latest
// effective date, ties broken by creation time.
type ContactInfo struct {
	ID            uuid.UUID
	EntityID      id.EntityID
	EffectiveDate filingmodels.Date
	Name          string
	Address1      string
	Address2      string
	City          string
	Zipcode       string
	State         string
	Phone         string
	Created       time.Time
}

// NewContactInfo validates and stamps a contact record.
func NewContactInfo(entityID id.EntityID, ci ContactInfo, now time.Time) (*ContactInfo, error) {
	if entityID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "contact info requires an entity")
	}
	if ci.Name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "contact info requires a name")
	}
	ci.ID = uuid.New()
	ci.EntityID = entityID
	if ci.EffectiveDate.IsZero() {
		ci.EffectiveDate = filingmodels.DateOf(now)
	}
	ci.Created = now
	return &ci, nil
}

// IsNewerThan orders contact records by effective date, then creation time.
func (c *ContactInfo) IsNewerThan(o *ContactInfo) bool {
	if !c.EffectiveDate.Equal(o.EffectiveDate) {
		return c.EffectiveDate.After(o.EffectiveDate)
	}
	return c.Created.After(o.Created)
}

// Filer is a person allowed to prepare and sign filings for entities.
type Filer struct {
	ID      id.FilerID
	Email   string
	Contact FilerContact
	Created time.Time
}

// FilerContact is the filer's own address block; the most recently updated wins.
type FilerContact struct {
	FirstName  string
	MiddleName string
	LastName   string
	Address1   string
	Address2   string
	City       string
	State      string
	Zipcode    string
	Phone      string
	Updated    time.Time
}
