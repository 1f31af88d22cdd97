package models

import (
	dErrors "efile/pkg/domain-errors"
)

// ConfigGroup is the filing_config group every lobbyist form is keyed under.
const ConfigGroup = "lobbyist"

// FilingType is the closed set of lobbyist forms.
type FilingType string

const (
	FilingTypeEC601 FilingType = "ec601"
	FilingTypeEC602 FilingType = "ec602"
	FilingTypeEC603 FilingType = "ec603"
	FilingTypeEC604 FilingType = "ec604"
	FilingTypeEC605 FilingType = "ec605"
)

type filingTypeInfo struct {
	description   string
	quarterly     bool
	registration  FilingType // registration form a quarterly report draws its roster from
	formName      string
	schemaVersion string
	assessesFees  bool
}

var filingTypes = map[FilingType]filingTypeInfo{
	FilingTypeEC601: {
		description:   "EC-601 Lobbyist Firm Registration",
		formName:      "ec601_2021.1",
		schemaVersion: "2021-01-31.1",
		assessesFees:  true,
	},
	FilingTypeEC602: {
		description:  "EC-602 Organization Lobbyist Registration",
		formName:     "ec602_2021.1",
		assessesFees: true,
	},
	FilingTypeEC603: {
		description:   "EC-603 Lobbyist Firm Quarterly Disclosure",
		quarterly:     true,
		registration:  FilingTypeEC601,
		formName:      "ec603_2021.1",
		schemaVersion: "2021-02-08.1",
	},
	FilingTypeEC604: {
		description:  "EC-604 Organization Lobbyist Quarterly Disclosure",
		quarterly:    true,
		registration: FilingTypeEC602,
		formName:     "ec604_2021.1",
	},
	FilingTypeEC605: {
		description: "EC-605 Expenditure Lobbyist Quarterly Disclosure",
		quarterly:   true,
		formName:    "ec605_2021.1",
	},
}

// AllFilingTypes lists the recognized forms in form-number order.
func AllFilingTypes() []FilingType {
	return []FilingType{FilingTypeEC601, FilingTypeEC602, FilingTypeEC603, FilingTypeEC604, FilingTypeEC605}
}

// ParseFilingType validates a form code.
func ParseFilingType(s string) (FilingType, error) {
	t := FilingType(s)
	if !t.IsValid() {
		return "", dErrors.Validation(dErrors.KindUnsupportedFilingType, "unrecognized filing type "+s)
	}
	return t, nil
}

func (t FilingType) IsValid() bool {
	_, ok := filingTypes[t]
	return ok
}

func (t FilingType) String() string { return string(t) }

func (t FilingType) Description() string { return filingTypes[t].description }

// IsQuarterly reports whether the form covers a calendar quarter and carries a deadline.
func (t FilingType) IsQuarterly() bool { return filingTypes[t].quarterly }

// RegistrationType returns the annual registration whose roster a quarterly
// report mirrors, if any.
func (t FilingType) RegistrationType() (FilingType, bool) {
	r := filingTypes[t].registration
	return r, r != ""
}

// FormName is the current versioned form identifier, e.g. ec601_2021.1.
func (t FilingType) FormName() string { return filingTypes[t].formName }

// SchemaVersion is the document schema version, empty for forms without a typed document.
func (t FilingType) SchemaVersion() string { return filingTypes[t].schemaVersion }

// AssessesFees reports whether registration fees apply to the form.
func (t FilingType) AssessesFees() bool { return filingTypes[t].assessesFees }
