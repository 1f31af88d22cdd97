// Package filingconfig resolves versioned filing parameters: fee schedules and
// quarterly deadlines keyed by (filing group, filing type, year, key).
//
// Lookups are exact. A missing key for a year never falls back to another year.
package filingconfig

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"efile/internal/filing/models"
	dErrors "efile/pkg/domain-errors"
)

// KeyFees names the fee schedule entry.
const KeyFees = "fees"

// Key addresses one configuration value.
type Key struct {
	Group      string
	FilingType models.FilingType
	Year       int
	Name       string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%d/%s", k.Group, k.FilingType, k.Year, k.Name)
}

// FeesKey addresses the fee schedule of a form and year.
func FeesKey(t models.FilingType, year int) Key {
	return Key{Group: models.ConfigGroup, FilingType: t, Year: year, Name: KeyFees}
}

// DeadlineKey addresses a quarterly due date.
func DeadlineKey(t models.FilingType, year int, q models.Quarter) Key {
	return Key{Group: models.ConfigGroup, FilingType: t, Year: year, Name: q.DeadlineKey()}
}

// Entry is a stored configuration value.
type Entry struct {
	Key
	Value string
}

// FeeKind selects the per-head rate within a fee range.
type FeeKind string

const (
	FeeKindLobbyist FeeKind = "lobbyist"
	FeeKindClient   FeeKind = "client"
)

// FeeRange is an inclusive date window with per-lobbyist and per-client rates.
type FeeRange struct {
	Start    models.Date     `json:"start"`
	End      models.Date     `json:"end"`
	Lobbyist decimal.Decimal `json:"lobbyist"`
	Client   decimal.Decimal `json:"client"`
}

// Rate returns the fee for kind.
func (r FeeRange) Rate(kind FeeKind) decimal.Decimal {
	if kind == FeeKindClient {
		return r.Client
	}
	return r.Lobbyist
}

// Label renders the range as MM/DD/YYYY - MM/DD/YYYY.
func (r FeeRange) Label() string {
	return r.Start.Format("01/02/2006") + " - " + r.End.Format("01/02/2006")
}

// FeeSchedule is the ordered set of fee ranges for a form and year.
type FeeSchedule struct {
	Ranges []FeeRange `json:"fee_schedule"`
}

// ParseFeeSchedule decodes a stored fee schedule, sorting ranges by start date
// and rejecting inverted or overlapping ranges.
func ParseFeeSchedule(value string) (FeeSchedule, error) {
	var fs FeeSchedule
	if err := json.Unmarshal([]byte(value), &fs); err != nil {
		return FeeSchedule{}, dErrors.Wrap(err, dErrors.CodeConfigurationMissing, "malformed fee schedule")
	}
	if err := fs.normalize(); err != nil {
		return FeeSchedule{}, err
	}
	return fs, nil
}

func (fs *FeeSchedule) normalize() error {
	sort.SliceStable(fs.Ranges, func(i, j int) bool {
		return fs.Ranges[i].Start.Before(fs.Ranges[j].Start)
	})
	for i, r := range fs.Ranges {
		if r.Start.IsZero() || r.End.IsZero() || r.End.Before(r.Start) {
			return dErrors.New(dErrors.CodeConfigurationMissing, "invalid fee range "+strconv.Itoa(i))
		}
		if r.Lobbyist.IsNegative() || r.Client.IsNegative() {
			return dErrors.New(dErrors.CodeConfigurationMissing, "negative fee in range "+r.Label())
		}
		if i > 0 && !fs.Ranges[i-1].End.Before(r.Start) {
			return dErrors.New(dErrors.CodeConfigurationMissing,
				"fee ranges "+fs.Ranges[i-1].Label()+" and "+r.Label()+" overlap")
		}
	}
	return nil
}

// Match returns the single range containing d.
func (fs FeeSchedule) Match(d models.Date) (FeeRange, bool) {
	for _, r := range fs.Ranges {
		if d.Within(r.Start, r.End) {
			return r, true
		}
	}
	return FeeRange{}, false
}

// Encode serializes the schedule in its stored form.
func (fs FeeSchedule) Encode() (string, error) {
	b, err := json.Marshal(fs)
	if err != nil {
		return "", fmt.Errorf("encode fee schedule: %w", err)
	}
	return string(b), nil
}
