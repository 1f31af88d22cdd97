// Package domain holds the typed identifiers shared across the filing modules.
//
// Each identifier is a distinct named UUID type so a filing id can never be
// passed where an entity or filer id is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "efile/pkg/domain-errors"
)

type (
	FilingID uuid.UUID
	EntityID uuid.UUID
	FilerID  uuid.UUID
)

func NewFilingID() FilingID { return FilingID(uuid.New()) }
func NewEntityID() EntityID { return EntityID(uuid.New()) }
func NewFilerID() FilerID   { return FilerID(uuid.New()) }

func (i FilingID) String() string { return uuid.UUID(i).String() }
func (i EntityID) String() string { return uuid.UUID(i).String() }
func (i FilerID) String() string  { return uuid.UUID(i).String() }

func (i FilingID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i EntityID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i FilerID) IsNil() bool  { return uuid.UUID(i) == uuid.Nil }

func (i FilingID) MarshalText() ([]byte, error) { return uuid.UUID(i).MarshalText() }
func (i EntityID) MarshalText() ([]byte, error) { return uuid.UUID(i).MarshalText() }
func (i FilerID) MarshalText() ([]byte, error)  { return uuid.UUID(i).MarshalText() }

func (i *FilingID) UnmarshalText(b []byte) error { return (*uuid.UUID)(i).UnmarshalText(b) }
func (i *EntityID) UnmarshalText(b []byte) error { return (*uuid.UUID)(i).UnmarshalText(b) }
func (i *FilerID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(i).UnmarshalText(b) }

// ParseFilingID parses a filing id at a trust boundary.
func ParseFilingID(s string) (FilingID, error) {
	u, err := parseUUID(s, "filing")
	return FilingID(u), err
}

// ParseEntityID parses a lobbying entity id at a trust boundary.
func ParseEntityID(s string) (EntityID, error) {
	u, err := parseUUID(s, "entity")
	return EntityID(u), err
}

// ParseFilerID parses a filer id at a trust boundary.
func ParseFilerID(s string) (FilerID, error) {
	u, err := parseUUID(s, "filer")
	return FilerID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+label+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" id cannot be nil")
	}
	return u, nil
}
