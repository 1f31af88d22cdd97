// Package document holds the typed raw filing documents.
//
// A raw document is stored 1:1 with its filing and replaced wholesale on every
// save. Each supported form has its own struct; Decode dispatches on the
// "form" discriminator. Forms without a typed definition are rejected.
package document

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"efile/internal/filing/models"
	id "efile/pkg/domain"
)

// Document is implemented by every typed form.
type Document interface {
	// Form is the discriminator, equal to the filing type.
	Form() models.FilingType
	// Common exposes the sections shared by all forms.
	Common() *Header
	// Validate checks the document structurally before it is filed.
	Validate() error
	// ContactInfoChanged reports whether filing the document should record new
	// contact info for the lobbying entity.
	ContactInfoChanged() bool
}

// Header is the set of sections every lobbyist form carries.
type Header struct {
	FormType                  models.FilingType  `json:"form" validate:"required"`
	Meta                      Meta               `json:"meta"`
	FilingID                  id.FilingID        `json:"filing_id"`
	Year                      int                `json:"year" validate:"gte=2020"`
	Amendment                 bool               `json:"amendment"`
	AmendmentReason           *string            `json:"amendment_reason"`
	AmendsID                  *id.FilingID       `json:"amends_id"`
	LobbyingEntityContactInfo ContactInfo        `json:"lobbying_entity_contact_info"`
	Filer                     Filer              `json:"filer"`
	Verification              Verification       `json:"verification"`
	Directory                 Directory          `json:"directory"`
	Comments                  map[string]*string `json:"comments"`
	Fees                      *FeeSummary        `json:"fees,omitempty"`
}

func (h *Header) Form() models.FilingType { return h.FormType }
func (h *Header) Common() *Header         { return h }

type Meta struct {
	FormName      string `json:"form_name" validate:"required"`
	SchemaVersion string `json:"schema_version" validate:"required"`
}

// ContactInfo is the lobbying entity's address block, effective from EffectiveDate.
type ContactInfo struct {
	EffectiveDate models.Date `json:"effective_date"`
	Name          string      `json:"name" validate:"required"`
	Address1      string      `json:"address1" validate:"required"`
	Address2      string      `json:"address2"`
	City          string      `json:"city" validate:"required"`
	Zipcode       string      `json:"zipcode" validate:"required"`
	State         string      `json:"state" validate:"required,len=2"`
	Phone         string      `json:"phone"`
}

// Filer identifies the person preparing the document.
type Filer struct {
	FilerID    *id.FilerID `json:"filer_id"`
	FirstName  string      `json:"first_name"`
	MiddleName string      `json:"middle_name"`
	LastName   string      `json:"last_name"`
	Address1   string      `json:"address1"`
	Address2   string      `json:"address2"`
	City       string      `json:"city"`
	State      string      `json:"state"`
	Zipcode    string      `json:"zipcode"`
	Phone      string      `json:"phone"`
	Email      string      `json:"email" validate:"omitempty,email"`
}

// Verification is the signature block. It is cleared whenever a document is
// cloned into an amendment.
type Verification struct {
	FilerID    *id.FilerID `json:"filer_id"`
	FilerTitle string      `json:"filer_title"`
	Location   string      `json:"location"`
	Date       models.Date `json:"date"`
	Signature  string      `json:"signature" validate:"required"`
	Comment    *string     `json:"comment"`
}

// FeeSummary is the simplified fee record embedded in a filed document.
type FeeSummary struct {
	Lobbyists    int             `json:"lobbyists"`
	LobbyistFees decimal.Decimal `json:"lobbyist_fees"`
	Clients      int             `json:"clients"`
	ClientFees   decimal.Decimal `json:"client_fees"`
}

// MarshalJSON writes the amounts as JSON numbers. Decoding accepts numbers or
// strings through decimal.Decimal.
func (f FeeSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lobbyists    int         `json:"lobbyists"`
		LobbyistFees json.Number `json:"lobbyist_fees"`
		Clients      int         `json:"clients"`
		ClientFees   json.Number `json:"client_fees"`
	}{
		Lobbyists:    f.Lobbyists,
		LobbyistFees: json.Number(f.LobbyistFees.String()),
		Clients:      f.Clients,
		ClientFees:   json.Number(f.ClientFees.String()),
	})
}

// Total is the amount owed for the filing.
func (f FeeSummary) Total() decimal.Decimal {
	return f.LobbyistFees.Add(f.ClientFees)
}

// Row is one line of a schedule. Entity references are read through Ref;
// other columns pass through unchanged.
type Row map[string]any

// Ref returns the string value stored under key, or "" if absent.
func (r Row) Ref(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

const (
	LobbyistRefKey = "lobbyist_entity_id"
	ClientRefKey   = "client_entity_id"
)

// Registered mirrors the roster of the latest registration into a quarterly report.
type Registered struct {
	Lobbyists     []Row `json:"lobbyists"`
	Clients       []Row `json:"clients"`
	MuniDecisions []Row `json:"muni_decisions"`
}
